// Package httpapi binds the judging endpoints to Gin.
package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dpitt/club-bouncer/internal/guestlist"
	"github.com/dpitt/club-bouncer/internal/judge"
	"github.com/dpitt/club-bouncer/static"
)

type Server struct {
	Resolver *judge.Resolver
	Gate     *guestlist.Gate
}

func New(resolver *judge.Resolver, gate *guestlist.Gate) *Server {
	return &Server{Resolver: resolver, Gate: gate}
}

// Mount attaches the API routes to the given Gin engine.
func (s *Server) Mount(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/judge", s.handleJudge)
	api.POST("/verify-guestlist", s.handleVerifyGuestlist)
	api.GET("/test-images", s.handleTestImages)
}

// handleJudge accepts the multipart submission and returns the verdict
// envelope. The guestlist check runs before any image processing.
func (s *Server) handleJudge(c *gin.Context) {
	if s.Gate != nil && !s.Gate.Allow(c.PostForm("code")) {
		log.Info().Str("path", c.Request.URL.Path).Msg("guestlist denied")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access_denied", "message": "You're not on the list."})
		return
	}

	sub := judge.Submission{
		Club:        c.PostForm("club"),
		MockFailure: c.PostForm("mockFailure") == "true",
	}
	if img, ok := readPhoto(c); ok {
		sub.Image = img
	}

	verdict, status := s.Resolver.Resolve(c.Request.Context(), sub)
	c.JSON(status, verdict)
}

func readPhoto(c *gin.Context) (*judge.Image, bool) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		log.Warn().Err(err).Msg("could not open uploaded photo")
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &judge.Image{Data: data, MimeType: mimeType, Filename: fh.Filename}, true
}

// handleVerifyGuestlist checks a code independently of judging so the
// frontend can gate the whole page. An unparseable body counts as an
// invalid code.
func (s *Server) handleVerifyGuestlist(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	if s.Gate.Allow(req.Code) {
		c.JSON(http.StatusOK, gin.H{"valid": true})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
}

// handleTestImages lists the bundled test subject images for the gallery.
func (s *Server) handleTestImages(c *gin.Context) {
	names, err := static.TestImages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "gallery_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": names})
}
