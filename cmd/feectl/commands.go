package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"feeportal/internal/client"
	"feeportal/internal/config"
	"feeportal/internal/payhere"
)

func signCmd(cfg *config.Config) *cobra.Command {
	var merchantID, orderID, amount, currency, statusCode string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute a checkout hash locally, or a notification md5sig with --status",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := payhere.NewSigner(cfg.PayHere.MerchantSecret)
			if err != nil {
				return fmt.Errorf("MERCHANT_SECRET: %w", err)
			}

			if statusCode != "" {
				// Notifications are signed over the amount exactly as sent.
				n := &payhere.Notification{
					MerchantID: merchantID,
					OrderID:    orderID,
					Amount:     amount,
					Currency:   currency,
					StatusCode: statusCode,
				}
				fmt.Println(signer.NotificationSignature(n))
				return nil
			}

			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			hash, err := signer.CheckoutHash(merchantID, orderID, parsed.StringFixed(2), currency)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&merchantID, "merchant", cfg.PayHere.MerchantID, "Merchant id")
	cmd.Flags().StringVar(&orderID, "order", "", "Order id")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&currency, "currency", cfg.PayHere.Currency, "Currency code")
	cmd.Flags().StringVar(&statusCode, "status", "", "Gateway status code; signs a notification instead of a checkout")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func checkoutCmd(cfg *config.Config) *cobra.Command {
	var amount, studentName, phone string
	var wait bool

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start a payment attempt and print the widget session",
		Long: `Start a payment attempt: generate an order id, have the portal sign it and
print the session the payment widget needs. With --wait, poll the portal until
the gateway's notification settles the order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			ids, err := payhere.NewOrderIDGenerator(cfg.PayHere.NodeID)
			if err != nil {
				return err
			}
			api := newAPIClient(cmd)
			checkout := client.NewCheckout(api, ids, client.NewPoller(api), cfg.PayHere.MerchantID, cfg.PayHere.Currency)

			handler := &printHandler{}
			attempt, err := checkout.Start(cmd.Context(), client.StartRequest{
				Amount:      parsed,
				StudentName: studentName,
				Phone:       phone,
			}, handler)
			if err != nil {
				return err
			}

			if err := printJSON(attempt.Session); err != nil {
				return err
			}
			if !wait {
				return nil
			}

			fmt.Fprintf(os.Stderr, "Waiting for order %s to settle...\n", attempt.OrderID())
			attempt.Completed(cmd.Context())
			return handler.err
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to charge")
	cmd.Flags().StringVar(&studentName, "name", "", "Student name")
	cmd.Flags().StringVar(&phone, "phone", "", "Parent phone number for the confirmation SMS")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the payment is verified")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func pollCmd() *cobra.Command {
	var interval time.Duration
	var attempts int

	cmd := &cobra.Command{
		Use:   "poll [order-id]",
		Short: "Poll an order's status until it settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poller := client.NewPoller(newAPIClient(cmd))
			poller.Interval = interval
			poller.MaxAttempts = attempts

			outcome, err := poller.Await(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (after %d polls)\n", outcome.OrderID, outcome.Status, outcome.Attempts)
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "Wait between polls")
	cmd.Flags().IntVar(&attempts, "attempts", client.DefaultMaxAttempts, "Total number of polls")

	return cmd
}

func notifyCmd(cfg *config.Config) *cobra.Command {
	var merchantID, orderID, amount, currency, statusCode string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a signed gateway notification to the portal (sandbox testing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := payhere.NewSigner(cfg.PayHere.MerchantSecret)
			if err != nil {
				return fmt.Errorf("MERCHANT_SECRET: %w", err)
			}

			n := &payhere.Notification{
				MerchantID: merchantID,
				OrderID:    orderID,
				Amount:     amount,
				Currency:   currency,
				StatusCode: statusCode,
			}
			n.Signature = signer.NotificationSignature(n)

			if err := newAPIClient(cmd).SendNotification(cmd.Context(), n.Encode()); err != nil {
				return err
			}
			fmt.Printf("Notified %s: %s\n", orderID, n.Status())
			return nil
		},
	}

	cmd.Flags().StringVar(&merchantID, "merchant", cfg.PayHere.MerchantID, "Merchant id")
	cmd.Flags().StringVar(&orderID, "order", "", "Order id")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount as the gateway reports it, e.g. 2500.00")
	cmd.Flags().StringVar(&currency, "currency", cfg.PayHere.Currency, "Currency code")
	cmd.Flags().StringVar(&statusCode, "status", "2", "Gateway status code (2, 0, -1, -2, -3)")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newAPIClient(cmd *cobra.Command) *client.APIClient {
	server, _ := cmd.Flags().GetString("server")
	return client.NewAPIClient(server, 10*time.Second)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printHandler reports an attempt's result on the terminal.
type printHandler struct {
	err error
}

func (h *printHandler) OnSuccess(orderID string) {
	fmt.Printf("Payment verified for %s\n", orderID)
}

func (h *printHandler) OnDismissed() {
	fmt.Println("Payment dismissed")
}

func (h *printHandler) OnError(err error) {
	h.err = err
}

var _ client.CompletionHandler = (*printHandler)(nil)
