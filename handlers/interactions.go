package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"shiftbot/core"
	"shiftbot/models"
)

// Discord signs every interaction request with these headers
const (
	signatureHeader = "X-Signature-Ed25519"
	timestampHeader = "X-Signature-Timestamp"
)

// maxBodySize bounds how much request body the webhook reads. Interaction
// payloads are small; anything larger is not Discord.
const maxBodySize = 1 << 20

// CommandDispatcher routes a parsed command interaction to its handler.
// Implemented by *commands.Registry.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, interaction *models.Interaction) *models.InteractionResponse
}

// InteractionsHandler is the webhook entry point Discord calls for every
// interaction. It authenticates the request, classifies the payload and
// dispatches commands; every path writes exactly one response.
type InteractionsHandler struct {
	publicKey  ed25519.PublicKey
	dispatcher CommandDispatcher
}

func NewInteractionsHandler(publicKey ed25519.PublicKey, dispatcher CommandDispatcher) *InteractionsHandler {
	return &InteractionsHandler{
		publicKey:  publicKey,
		dispatcher: dispatcher,
	}
}

func (h *InteractionsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering interactions endpoint on /interactions")
	router.HandleFunc("/interactions", h.HandleInteraction)
}

func (h *InteractionsHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	reqID := core.NewID("int")
	log.Printf("⚡ [%s] Interaction received from %s", reqID, r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("⚠️ [%s] Rejected %s request", reqID, r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	signature := r.Header.Get(signatureHeader)
	timestamp := r.Header.Get(timestampHeader)
	if signature == "" || timestamp == "" {
		log.Printf("❌ [%s] Missing signature headers", reqID)
		http.Error(w, "Missing signature headers", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Printf("❌ [%s] Failed to read request body: %v", reqID, err)
		http.Error(w, "Failed to read body", http.StatusInternalServerError)
		return
	}

	if !verifySignature(h.publicKey, body, signature, timestamp) {
		log.Printf("❌ [%s] Signature verification failed", reqID)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	// Parsing only happens after verification so no work is done on
	// unauthenticated input
	interaction, err := models.ParseInteraction(body)
	if err != nil {
		// Malformed but correctly signed payloads get the same reply as
		// unsupported interaction kinds, so nothing about the parser leaks
		log.Printf("⚠️ [%s] Failed to parse interaction payload: %v", reqID, err)
		writeResponse(w, reqID, unsupportedResponse())
		return
	}

	switch interaction.Type {
	case models.InteractionTypePing:
		log.Printf("✅ [%s] Ping acknowledged", reqID)
		writeResponse(w, reqID, models.PongResponse())
	case models.InteractionTypeApplicationCommand:
		log.Printf("⚡ [%s] Dispatching command: %s", reqID, interaction.CommandName())
		writeResponse(w, reqID, h.dispatcher.Dispatch(r.Context(), interaction))
	default:
		log.Printf("⚠️ [%s] Unsupported interaction type: %d", reqID, interaction.Type)
		writeResponse(w, reqID, unsupportedResponse())
	}
}

// verifySignature checks the Ed25519 signature over timestamp || rawBody.
// Any structural problem with the signature or key collapses to false.
func verifySignature(publicKey ed25519.PublicKey, body []byte, signature, timestamp string) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(publicKey, msg, sig)
}

func unsupportedResponse() *models.InteractionResponse {
	return models.EphemeralMessage("Unsupported interaction type")
}

func writeResponse(w http.ResponseWriter, reqID string, response *models.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ [%s] Failed to write response: %v", reqID, err)
	}
}
