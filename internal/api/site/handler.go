// Package siteapi serves the crawler-facing sitemap.xml and robots.txt.
package siteapi

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gallery-api/internal/api/response"
	"gallery-api/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	categories repository.CategoryRepository
	artworks   repository.ArtworkRepository
	baseURL    string
}

func NewHandler(categories repository.CategoryRepository, artworks repository.ArtworkRepository, publicBaseURL string) *Handler {
	return &Handler{
		categories: categories,
		artworks:   artworks,
		baseURL:    strings.TrimRight(publicBaseURL, "/"),
	}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// GET /sitemap.xml
func (h *Handler) Sitemap(c *gin.Context) {
	ctx := c.Request.Context()
	cats, err := h.categories.ListActive(ctx)
	if err != nil {
		response.Error(c, fmt.Errorf("sitemap categories: %w", err))
		return
	}
	refs, err := h.artworks.ListActiveRefs(ctx)
	if err != nil {
		response.Error(c, fmt.Errorf("sitemap artworks: %w", err))
		return
	}

	set := urlSet{NS: sitemapNS, URLs: make([]sitemapURL, 0, 2+len(cats)+len(refs))}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: h.baseURL + "/", ChangeFreq: "daily", Priority: "1.0"},
		sitemapURL{Loc: h.baseURL + "/gallery", ChangeFreq: "daily", Priority: "0.9"},
	)
	for _, cat := range cats {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/categories/" + cat.ID,
			LastMod:    lastMod(cat.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	for _, a := range refs {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/artworks/" + a.ID,
			LastMod:    lastMod(a.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		response.Error(c, fmt.Errorf("encode sitemap: %w", err))
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// GET /robots.txt
func (h *Handler) Robots(c *gin.Context) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("\nSitemap: " + h.baseURL + "/sitemap.xml\n")
	c.String(http.StatusOK, b.String())
}
