package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	payFPSAddr    string
	payAmount     int64
	payCurrency   string
	payCardNumber string
	payCardExpiry string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Initiate a single payment against a running flow processing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initiatePayment(false)
	},
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Initiate a split payment against a running flow processing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initiatePayment(true)
	},
}

func init() {
	for _, c := range []*cobra.Command{payCmd, splitCmd} {
		c.Flags().StringVar(&payFPSAddr, "fps-addr", "localhost:9080", "address of the flow processing service")
		c.Flags().Int64Var(&payAmount, "amount", 1000, "base amount in minor units")
		c.Flags().StringVar(&payCurrency, "currency", "EUR", "ISO 4217 currency code")
		c.Flags().StringVar(&payCardNumber, "card", "4242424242424242", "card number")
		c.Flags().StringVar(&payCardExpiry, "expiry", "12/30", "card expiry MM/YY")
	}
}

func initiatePayment(split bool) error {
	body, err := json.Marshal(map[string]any{
		"amount":       payAmount,
		"currency":     payCurrency,
		"splitEnabled": split,
		"cardNumber":   payCardNumber,
		"cardExpiry":   payCardExpiry,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("http://%s/payments", payFPSAddr), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("initiating payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var msg bytes.Buffer
		msg.ReadFrom(resp.Body)
		return fmt.Errorf("payment rejected: %s: %s", resp.Status, msg.String())
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, readAll(resp), "", "  "); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, pretty.String())
	return nil
}

func readAll(resp *http.Response) []byte {
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return buf.Bytes()
}
