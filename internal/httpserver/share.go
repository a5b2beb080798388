// internal/httpserver/share.go
//
// GET /share.png: a QR code pointing at the public URL of this server, so
// players can hand the game to someone across the room.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	qrDefaultSize = 320
	qrMinSize     = 128
	qrMaxSize     = 1024
)

// shareURL is the public URL encoded in the QR image: PublicURL when
// configured, otherwise derived from the request.
func (s *Server) shareURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(proto)
	}
	return scheme + "://" + r.Host + "/"
}

// handleShare renders a PNG QR code pointing at the game.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	size := queryInt(r, "size", qrDefaultSize)
	size = min(max(size, qrMinSize), qrMaxSize)

	png, err := qrcode.Encode(s.shareURL(r), qrcode.Medium, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}
