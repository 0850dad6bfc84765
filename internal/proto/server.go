package proto

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// HandlerFunc processes a decoded Message and returns a JSON-serializable
// response or an error.
type HandlerFunc func(*Message) (interface{}, error)

// Server is the shared HTTP front-end for every module binary: one
// /mensaje endpoint dispatching by message type, one /health endpoint.
type Server struct {
	IP       string
	Port     int
	Name     string
	handlers map[int]HandlerFunc
}

// NewServer builds a Server for the given module name.
func NewServer(ip string, port int, name string) *Server {
	return &Server{
		IP:       ip,
		Port:     port,
		Name:     name,
		handlers: make(map[int]HandlerFunc),
	}
}

// Register installs the handler for a message type.
func (s *Server) Register(msgType int, handler HandlerFunc) {
	s.handlers[msgType] = handler
}

// ListenAndServe blocks serving HTTP on IP:Port.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/mensaje", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
			return
		}

		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, fmt.Sprintf("Error decodificando mensaje: %v", err), http.StatusBadRequest)
			return
		}

		handler, ok := s.handlers[msg.Type]
		if !ok {
			http.Error(w, fmt.Sprintf("No hay manejador para el tipo de mensaje %d", msg.Type), http.StatusBadRequest)
			return
		}

		response, err := handler(&msg)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error en el manejador: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "module": s.Name})
	})

	addr := fmt.Sprintf("%s:%d", s.IP, s.Port)
	logging.Info.Info("Servidor HTTP escuchando", "módulo", s.Name, "dirección", addr)
	return http.ListenAndServe(addr, mux)
}
