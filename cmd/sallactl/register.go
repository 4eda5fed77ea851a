package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/yousefm/sallasync/internal/client/salla"
	"github.com/yousefm/sallasync/internal/config"
	"github.com/yousefm/sallasync/internal/service/webhook"
)

const webhookAPIVersion = 2

var subscribedKinds = []webhook.Kind{
	webhook.KindOrderCreated,
	webhook.KindOrderUpdated,
	webhook.KindCustomerCreated,
	webhook.KindCustomerUpdated,
}

func registerCmd() *cobra.Command {
	var receiverURL string
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Subscribe the receiver URL to the platform's webhook events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if cfg.Salla.APIToken == "" {
				return fmt.Errorf("SALLA_API_TOKEN is required to register webhooks")
			}

			if receiverURL == "" {
				receiverURL = cfg.BaseURL + "/webhooks/salla"
			}

			client := salla.New(
				oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Salla.APIToken}),
				salla.WithBaseURL(cfg.Salla.APIBaseURL),
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, kind := range subscribedKinds {
				g.Go(func() error {
					sub, err := client.Webhooks.Register(ctx, salla.Registration{
						Name:    fmt.Sprintf("%s %s", name, kind),
						Event:   string(kind),
						URL:     receiverURL,
						Version: webhookAPIVersion,
					})
					if err != nil {
						return fmt.Errorf("failed to register %s: %w", kind, err)
					}
					fmt.Printf("registered %s (subscription %d)\n", kind, sub.ID)
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&receiverURL, "url", "", "receiver URL (defaults to BASE_URL + /webhooks/salla)")
	cmd.Flags().StringVar(&name, "name", "sallasync", "subscription name prefix")

	return cmd
}
