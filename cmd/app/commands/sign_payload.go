package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	webhookService "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/service"
)

// RunSignPayload prints the hex HMAC-SHA256 signature a provider would send for a body.
// The body is read from filePath, or from reader when filePath is empty or "-".
// The body is signed byte for byte, including any trailing newline.
func RunSignPayload(reader io.Reader, writer io.Writer, secret, filePath string) error {
	if secret == "" {
		return errors.New("secret is required")
	}

	var (
		body []byte
		err  error
	)
	if filePath == "" || filePath == "-" {
		body, err = io.ReadAll(reader)
	} else {
		body, err = os.ReadFile(filePath)
	}
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	_, err = fmt.Fprintln(writer, webhookService.Sign(secret, body))
	return err
}
