package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/ops"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	codec    *vcard.Codec
	imageDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, codec *vcard.Codec, imageDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, codec: codec, imageDir: imageDir}
}

// Request types for each tool

// ImportRequest represents the arguments for contact_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// ExportRequest represents the arguments for contact_export.
type ExportRequest struct {
	Path      string   `json:"path,omitempty"`
	IDs       []string `json:"ids,omitempty"`
	Aggregate bool     `json:"aggregate,omitempty"`
}

// FetchRequest represents the arguments for contact_fetch.
type FetchRequest struct {
	ID           string `json:"id"`
	IncludeVCard bool   `json:"include_vcard,omitempty"`
}

// ListRequest represents the arguments for contact_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for contact_search.
type SearchRequest struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// UpdateRequest represents the arguments for contact_update.
type UpdateRequest struct {
	ID    string `json:"id"`
	VCard string `json:"vcard"`
}

// DeleteRequest represents the arguments for contact_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// LinkRequest represents the arguments for contact_link.
type LinkRequest struct {
	IDs []string `json:"ids"`
}

// CountRequest represents the arguments for vcard_count.
type CountRequest struct {
	Path string `json:"path"`
}

// DecodeRequest represents the arguments for vcard_decode.
type DecodeRequest struct {
	Text string `json:"text"`
}

// EncodeRequest represents the arguments for vcard_encode.
type EncodeRequest struct {
	Records   []*contact.Record `json:"records"`
	Aggregate bool              `json:"aggregate,omitempty"`
}

// Handler implementations

// HandleImport handles the contact_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Import(ctx, h.db, h.cfg, h.codec, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the contact_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Export(ctx, h.db, h.cfg, h.codec, ops.ExportInput{
		Path:      input.Path,
		IDs:       input.IDs,
		Aggregate: input.Aggregate,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the contact_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Fetch(ctx, h.db, h.codec, ops.FetchInput{ID: input.ID, IncludeVCard: input.IncludeVCard})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the contact_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.List(h.db, ops.ListInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the contact_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Search(h.db, ops.SearchInput{Query: input.Query, Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the contact_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Update(ctx, h.db, h.codec, ops.UpdateInput{ID: input.ID, VCard: input.VCard})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the contact_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Delete(h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLink handles the contact_link tool call.
func (h *Handlers) HandleLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Link(h.db, ops.LinkInput{IDs: input.IDs})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCount handles the vcard_count tool call.
func (h *Handlers) HandleCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CountRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Count(h.cfg, ops.CountInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDecode handles the vcard_decode tool call.
func (h *Handlers) HandleDecode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DecodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Decode(ctx, h.codec, ops.DecodeInput{Text: input.Text})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleEncode handles the vcard_encode tool call. Image paths must point
// into the image directory.
func (h *Handlers) HandleEncode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EncodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Encode(ctx, h.codec, ops.EncodeInput{
		Records:   input.Records,
		Aggregate: input.Aggregate,
		ImageRoot: h.imageDir,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var ce *errors.ContactsError
	if stderrors.As(err, &ce) {
		msg := ce.Message
		if err != ce {
			// keep wrapper context such as "records[2]: ..."
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    ce.Code,
			"message": msg,
			"status":  ce.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if ce.Code != errors.ErrInternal && ce.Details != nil {
			errorObj["details"] = ce.Details
		}
		if ce.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
