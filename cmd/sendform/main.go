// Command sendform fills in the contact form from flags and submits it to a
// running relay, the same way the browser form does.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"contact-relay-backend/internal/submission"

	"github.com/spf13/cobra"
)

var (
	endpoint string
	origin   string
	name     string
	mail     string
	subject  string
	message  string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sendform",
	Short: "Submit a contact message to a contact relay",
	Long: `sendform posts one contact submission to a relay's /send endpoint.

Fields are validated locally first; an invalid form never reaches the server.
Leave --subject empty to send without a subject line.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080/send", "Relay submit URL")
	rootCmd.Flags().StringVar(&origin, "origin", "", "Origin header to send (must be on the relay's allow-list)")
	rootCmd.Flags().StringVarP(&name, "name", "n", "", "Full name (first and last)")
	rootCmd.Flags().StringVarP(&mail, "email", "e", "", "Reply-to email address")
	rootCmd.Flags().StringVarP(&subject, "subject", "s", "", "Optional subject")
	rootCmd.Flags().StringVarP(&message, "message", "m", "", "Message body")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "Overall request timeout")
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	transport := submission.NewHTTPTransport(endpoint)
	transport.Origin = origin

	c := submission.New(transport, submission.NewTerminalView(os.Stdout),
		submission.WithSubjectField(subject != ""))
	defer c.Close()

	c.SetField(submission.FieldName, name)
	c.SetField(submission.FieldEmail, mail)
	c.SetField(submission.FieldSubject, subject)
	c.SetField(submission.FieldMessage, message)

	out := c.Submit(ctx)
	if out.State != submission.ResolvedSuccess {
		if out.Err != nil {
			return fmt.Errorf("submission failed: %w", out.Err)
		}
		return fmt.Errorf("submission failed: %s", out.Status.Text)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
