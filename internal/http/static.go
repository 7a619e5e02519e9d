package http

import (
	"bytes"
	stdhttp "net/http"
	"time"

	_ "embed"
)

//go:embed static/app.js
var appScript []byte

func scriptHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	stdhttp.ServeContent(w, r, "app.js", time.Time{}, bytes.NewReader(appScript))
}
