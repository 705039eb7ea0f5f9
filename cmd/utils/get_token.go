package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"safarsathi-service/internal/infrastructure/oauth"
	"safarsathi-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Obtains a Gmail refresh token with the send scope for GMAIL_REFRESH_TOKEN.
func main() {
	godotenv.Load()

	log := logger.NewLogger("info")
	gmailOAuth := oauth.NewGmailOAuth(
		os.Getenv("GMAIL_CLIENT_ID"),
		os.Getenv("GMAIL_CLIENT_SECRET"),
		"",
		"http://localhost:8090/oauth2callback",
		log,
	)

	state := uuid.New().String()

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	log.Fatal("Callback server stopped", "error", http.ListenAndServe(":8090", nil))
}
