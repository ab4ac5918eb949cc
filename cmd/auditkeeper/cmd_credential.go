package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/learnhub/auditkeeper/internal/models"
	"github.com/learnhub/auditkeeper/internal/store"
)

// tokenPrefix marks keys issued by this binary.
const tokenPrefix = "ak_"

var issuableRoles = []models.Role{models.RoleAdmin, models.RoleSuperadmin}

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Issue or revoke API keys for the apikey auth provider",
	}

	cmd.AddCommand(newCredentialIssueCmd())
	cmd.AddCommand(newCredentialRevokeCmd())

	return cmd
}

func newCredentialIssueCmd() *cobra.Command {
	var subject, email, role string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Create an API key and print it once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := models.Role(role)
			if !slices.Contains(issuableRoles, r) {
				return fmt.Errorf("role must be admin or superadmin, got %q", role)
			}

			token, err := newToken()
			if err != nil {
				return err
			}

			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			pool, err := openPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			creds := store.NewCredentialStore(store.Base{Pool: pool, Log: log})
			if err := creds.CreateCredential(cmd.Context(), models.Identity{Subject: subject, Email: email, Role: r}, token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Stable user identifier (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email recorded on audit entries")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin|superadmin")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func newCredentialRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <subject>",
		Short: "Revoke every active key of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			pool, err := openPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := store.NewCredentialStore(store.Base{Pool: pool, Log: log}).RevokeCredential(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d key(s)\n", n)
			return nil
		},
	}
}

// newToken returns a random 32-byte key, hex encoded with tokenPrefix.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(b), nil
}
