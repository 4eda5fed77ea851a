package handler

import (
	"net/http"

	"github.com/yousefm/sallasync/internal/version"
	"github.com/yousefm/sallasync/internal/xhttp"
)

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	xhttp.WriteOK(w, map[string]string{
		"status":  "ok",
		"version": version.Get(),
	})
}
