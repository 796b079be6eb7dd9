package web

import (
	"database/sql"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/ops"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	codec    *vcard.Codec
	renderer *Renderer
}

// HandleList handles GET /contacts.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Contacts",
			Version: h.renderer.version,
			Nav:     "contacts",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleSearch handles GET /contacts/search?q=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		HasQuery: strings.TrimSpace(query) != "",
	}

	if data.HasQuery {
		result, err := ops.Search(h.db, ops.SearchInput{
			Query:  query,
			Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
			Offset: parseIntParam(r, "offset", 0),
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Items = result.Items
		data.Pagination = result.Pagination
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "search", "search-results", data)
		return
	}
	h.renderer.renderPage(w, r, "search", data)
}

// HandleDetail handles GET /contacts/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	c, err := ops.Fetch(r.Context(), h.db, h.codec, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	notes := make([]renderedNote, 0, len(c.Record.Notes))
	for _, n := range c.Record.Notes {
		notes = append(notes, renderedNote{HTML: renderMarkdown(n.Text)})
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayName(c.DisplayName, c.ID),
			Version: h.renderer.version,
			Nav:     "contacts",
		},
		Contact:     c,
		Notes:       notes,
		DisplayName: displayName(c.DisplayName, c.ID),
	})
}

// HandleVCard handles GET /contacts/{id}/vcard and serves the contact as a
// downloadable vCard 3.0 file.
func (h *Handlers) HandleVCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	c, err := ops.Fetch(r.Context(), h.db, h.codec, ops.FetchInput{ID: id, IncludeVCard: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	name := ops.ExportFileStem(contact.Normalize(c.DisplayName))
	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name + ".vcf"}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(c.VCard))
}

// HandleDelete handles DELETE /contacts/{id} and POST /contacts/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	result, err := ops.Delete(h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	log().Info().Str("id", result.ID).Msg("contact deleted")

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/contacts")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/contacts", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// displayName returns the contact's display name, or a truncated ID when it
// has none.
func displayName(name, id string) string {
	if name != "" {
		return name
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
