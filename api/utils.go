package api

import (
	"encoding/json"
	"log"
	"net/http"

	"OrcaBI/api/constants"
)

// RespondWithError writes {"detail": errMsg} with the given status.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	RespondWithJSON(w, status, map[string]interface{}{
		constants.ValueDetail: errMsg,
	})
}

// RespondWithJSON encodes payload as the response body.
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("[ERROR] encoding response:", err)
	}
}

// RespondWithPayload wraps a list payload as {"data": rows}.
func RespondWithPayload(w http.ResponseWriter, rows interface{}) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{constants.ValueData: rows})
}

// RespondWithNotice sends a non-failure notice such as "no data loaded yet"
// as {"error": msg} with status 200.
func RespondWithNotice(w http.ResponseWriter, msg string) {
	log.Println("[INFO]", msg)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{constants.ValueError: msg})
}

// LogInfo logs an informational message (wrapper for consistent logging)
func LogInfo(msg string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+msg, args...)
	} else {
		log.Println("[INFO]", msg)
	}
}

// LogError logs an error message (wrapper for consistent logging)
func LogError(msg string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+msg, args...)
	} else {
		log.Println("[ERROR]", msg)
	}
}
