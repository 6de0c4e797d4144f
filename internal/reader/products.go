// Package reader implements the dual-path read strategy: answer from the
// local mirror when it has data, fall back to the upstream API otherwise.
package reader

import (
	"context"

	"steve-mcp/internal/logging"
	"steve-mcp/internal/steveapi"
	"steve-mcp/internal/store"
)

// ProductMirror is the mirror-side lookup consulted first
type ProductMirror interface {
	ListProducts(ctx context.Context, workspaceID string) store.ProductLookup
}

// ProductAPI is the authoritative fallback path
type ProductAPI interface {
	ListWorkspaceProducts(ctx context.Context, authHeader, workspaceID string, limit int) ([]steveapi.Product, error)
}

// ProductReader answers workspace product listings. The mirror result is
// accepted only when non-empty: the mirror may simply lack a workspace's
// data while the API has it, so an empty mirror result is treated exactly
// like a mirror fault. The API's answer, including a legitimately empty
// list or an error, is final; the two paths are never blended.
type ProductReader struct {
	mirror ProductMirror // nil when no mirror is configured
	api    ProductAPI
	logger logging.Logger
}

// NewProductReader creates a dual-path product reader. mirror may be nil.
func NewProductReader(mirror ProductMirror, api ProductAPI, logger logging.Logger) *ProductReader {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &ProductReader{mirror: mirror, api: api, logger: logger}
}

// Products lists the products of a workspace. The caller must already hold
// a valid credential; limit only applies to the API fallback path.
func (r *ProductReader) Products(ctx context.Context, authHeader, workspaceID string, limit int) ([]steveapi.Product, error) {
	lookup := store.ProductLookup{Miss: store.MissUnconfigured}
	if r.mirror != nil {
		lookup = r.mirror.ListProducts(ctx, workspaceID)
	}

	if lookup.Hit() {
		r.logger.DebugContext(ctx, "products served from mirror",
			"workspace_id", workspaceID, "count", len(lookup.Products))
		return lookup.Products, nil
	}

	if lookup.Miss == store.MissError {
		r.logger.WarnContext(ctx, "mirror read failed, falling back to API",
			"workspace_id", workspaceID, "reason", string(lookup.Miss), "error", lookup.Err)
	} else {
		r.logger.DebugContext(ctx, "mirror could not answer, falling back to API",
			"workspace_id", workspaceID, "reason", string(lookup.Miss))
	}

	products, err := r.api.ListWorkspaceProducts(ctx, authHeader, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "products served from API",
		"workspace_id", workspaceID, "count", len(products))
	return products, nil
}
