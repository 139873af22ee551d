package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/omni/deposit-monitor/logging"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, res interface{}) {
	var (
		raw []byte
		err error
	)
	if pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty")); pretty {
		raw, err = json.MarshalIndent(res, "", "  ")
	} else {
		raw, err = json.Marshal(res)
	}
	if err != nil {
		Error(w, r, fmt.Errorf("failed to marshal JSON result: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(raw, '\n'))
}

func Error(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.LoggerFromContext(r.Context())
	logger.WithError(err).Error("request handling failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
