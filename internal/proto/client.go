package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// Client is an HTTP client bound to one peer module.
type Client struct {
	BaseURL string
	Name    string
	http    *http.Client
}

// NewClient builds a Client pointed at ip:port, tagged name for logging.
func NewClient(ip string, port int, name string) *Client {
	return &Client{
		BaseURL: fmt.Sprintf("http://%s:%d", ip, port),
		Name:    name,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a Message to the peer's /mensaje endpoint and decodes the
// JSON response into an interface{}.
func (c *Client) Send(msgType int, operation string, data interface{}) (interface{}, error) {
	msg := Message{Type: msgType, Operation: operation, Origin: c.Name, Data: data}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("serializar mensaje: %w", err)
	}

	resp, err := c.http.Post(c.BaseURL+"/mensaje", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("enviar mensaje HTTP a %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("respuesta HTTP no exitosa de %s: %d - %s", c.BaseURL, resp.StatusCode, string(raw))
	}

	var result interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decodificar respuesta de %s: %w", c.BaseURL, err)
	}
	return result, nil
}

// Ping checks /health on the peer.
func (c *Client) Ping() error {
	resp, err := c.http.Get(c.BaseURL + "/health")
	if err != nil {
		return fmt.Errorf("verificar conexión con %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("estado inesperado al verificar %s: %d", c.BaseURL, resp.StatusCode)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decodificar respuesta de salud de %s: %w", c.BaseURL, err)
	}
	logging.Info.Info("Conexión verificada", "destino", c.BaseURL, "módulo", result["module"])
	return nil
}

// DialWithRetry retries Ping until it succeeds or attempts is exhausted,
// sleeping backoff between tries.
func DialWithRetry(c *Client, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = c.Ping(); err == nil {
			return nil
		}
		logging.Error.Error("Fallo al conectar, reintentando", "destino", c.BaseURL, "intento", i+1, "error", err)
		time.Sleep(backoff)
	}
	return fmt.Errorf("no se pudo establecer conexión con %s después de %d intentos: %w", c.BaseURL, attempts, err)
}
