package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/BerylCAtieno/identity-ocr-api/internal/client"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ocrctl",
		Short:         "Extract fields from identity documents (Aadhar, PAN, Passport)",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	var (
		server  string
		quiet   bool
		verbose bool
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Upload an image and print the extracted fields",
		Long: `Uploads a single image (JPEG, PNG, ...) to the extraction gateway and prints
full name, date of birth, document number, address and document type.

Progress messages are written to stderr. Nothing is stored locally.

Environment:
  OCR_SERVER_URL   Default gateway URL (` + defaultServer + `).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			report := client.NewReporter(cmd.ErrOrStderr(), quiet, verbose)
			u := client.NewUploader(server, &http.Client{}, report)

			result, err := u.SelectFile(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				out := map[string]any{
					"fullName":       result.FullName,
					"dateOfBirth":    result.DateOfBirth,
					"documentNumber": result.DocumentNumber,
					"address":        result.Address,
					"typeOfDocument": result.TypeOfDocument,
				}
				for k, v := range result.Extra {
					out[k] = v
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return client.Render(cmd.OutOrStdout(), result)
		},
	}

	serverDefault := os.Getenv("OCR_SERVER_URL")
	if serverDefault == "" {
		serverDefault = defaultServer
	}

	cmd.Flags().StringVarP(&server, "server", "s", serverDefault, "Extraction gateway base URL")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Extra details to stderr")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the fields as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall request timeout (0 disables)")

	return cmd
}
