package chi

import (
	"encoding/json"
	"net/http"

	"github.com/marcelsud/webhook-recorder/command"
)

// commandRequest is either a structured command or a raw chat line
type commandRequest struct {
	Name    string   `json:"name"`
	Args    []string `json:"args"`
	Text    string   `json:"text"`
	Session string   `json:"session"`
}

// postCommand handles POST /v1/commands and answers with the reply text
func postCommand(commands *command.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in commandRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := command.Request{Name: in.Name, Args: in.Args, Session: in.Session}
		if in.Text != "" {
			var ok bool
			if req, ok = command.ParseRequest(in.Text, in.Session); !ok {
				http.Error(w, "command text is blank", http.StatusBadRequest)
				return
			}
		}
		if req.Name == "" {
			http.Error(w, "command name is required", http.StatusBadRequest)
			return
		}

		reply, ok := commands.Execute(r.Context(), req)
		if !ok {
			http.Error(w, "unknown command: "+req.Name, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(reply))
	})
}
