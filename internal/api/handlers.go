package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/pipeline"
)

type parseRequest struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
	Format  string `json:"format,omitempty"`
}

type itemResponse struct {
	Raw        string                 `json:"raw"`
	Name       *string                `json:"name"`
	Qty        string                 `json:"qty,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	LookupTerm *string                `json:"lookupTerm,omitempty"`
	Category   *string                `json:"category,omitempty"`
	Section    *string                `json:"section,omitempty"`
	Directive  *string                `json:"directive,omitempty"`
	Location   *internal.ItemLocation `json:"location,omitempty"`
}

type parseResponse struct {
	Items []itemResponse `json:"items"`
}

type aisleGroupResponse struct {
	Aisle string         `json:"aisle"`
	Items []itemResponse `json:"items"`
}

type resolveResponse struct {
	Items    []itemResponse       `json:"items"`
	Aisles   []aisleGroupResponse `json:"aisles"`
	Rendered string               `json:"rendered,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	items := pipeline.ParseDocument(req.Content, s.ruleset)
	resp := parseResponse{Items: make([]itemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(internal.ResolvedItem{ParsedItem: item}))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if s.resolver == nil {
		writeError(w, http.StatusServiceUnavailable, "resolver not configured")
		return
	}

	items := pipeline.ParseDocument(req.Content, s.ruleset)
	resolved := s.resolver.ResolveItems(r.Context(), items)

	resp := resolveResponse{Items: make([]itemResponse, 0, len(resolved))}
	for _, item := range resolved {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	for _, group := range pipeline.GroupByAisle(resolved) {
		groupResp := aisleGroupResponse{Aisle: group.Label, Items: make([]itemResponse, 0, len(group.Items))}
		for _, item := range group.Items {
			groupResp.Items = append(groupResp.Items, toItemResponse(item))
		}
		resp.Aisles = append(resp.Aisles, groupResp)
	}

	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = "Shopping run"
	}
	switch strings.ToLower(req.Format) {
	case "", "json":
	case "markdown":
		resp.Rendered = pipeline.RenderMarkdown(title, resolved)
	case "html":
		html, err := pipeline.RenderHTML(title, resolved)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		resp.Rendered = html
	default:
		writeError(w, http.StatusBadRequest, "unsupported format: "+req.Format)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func toItemResponse(item internal.ResolvedItem) itemResponse {
	return itemResponse{
		Raw:        item.Raw,
		Name:       item.Name,
		Qty:        item.Qty,
		Notes:      item.Notes,
		LookupTerm: item.LookupTerm,
		Category:   item.Category,
		Section:    item.Section,
		Directive:  item.Directive,
		Location:   item.Location,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
