package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Abin-1409/fuel-swift/internal/apiclient"
	"github.com/Abin-1409/fuel-swift/internal/domain"
)

func requestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "request", Short: "Place service requests"}

	var (
		form     apiclient.ServiceRequestForm
		liters   float64
		rupees   float64
		tyres    int
		battery  int
		lat, lng float64
		delivery string
		cod      bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Submit a service request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			form.QuantityLiters = floatFlag(f, "liters", liters)
			form.AmountRupees = floatFlag(f, "rupees", rupees)
			form.LocationLat = floatFlag(f, "lat", lat)
			form.LocationLng = floatFlag(f, "lng", lng)
			if f.Changed("tyres") {
				form.TyreCount = &tyres
			}
			if f.Changed("battery") {
				form.BatteryPercentage = &battery
			}
			if delivery != "" {
				t, err := time.Parse(time.RFC3339, delivery)
				if err != nil {
					return fmt.Errorf("delivery: want RFC3339, got %q", delivery)
				}
				form.DeliveryTime = &t
			}

			c := a.client()
			if cod {
				sub, err := c.SubmitCOD(cmd.Context(), form)
				if err != nil {
					return err
				}
				return a.print(sub)
			}
			form.PaymentMethod = string(domain.PaymentOnline)
			sub, err := c.SubmitRequest(cmd.Context(), form)
			if err != nil {
				return err
			}
			// online requests continue with a gateway order for the stored payment
			co, err := c.CreateOrder(cmd.Context(), sub.PaymentID, 0)
			if err != nil {
				return err
			}
			return a.print(map[string]any{"request": sub, "checkout": co})
		},
	}
	f := create.Flags()
	f.StringVar(&form.ServiceType, "type", "", "service type: petrol, diesel, ev, air, mechanical")
	f.StringVar(&form.UserEmail, "email", "", "customer email")
	f.StringVar(&form.VehicleType, "vehicle-type", "", "vehicle type")
	f.StringVar(&form.VehicleNumber, "vehicle-number", "", "vehicle registration number")
	f.Float64Var(&liters, "liters", 0, "fuel quantity in liters")
	f.Float64Var(&rupees, "rupees", 0, "fuel amount in rupees")
	f.IntVar(&tyres, "tyres", 0, "tyre count (air)")
	f.StringVar(&form.TyreType, "tyre-type", "", "tyre type (air)")
	f.StringVar(&form.LeakDetection, "leak-detection", "", "leak detection option (air)")
	f.StringVar(&form.ChargerType, "charger", "", "charger type (ev)")
	f.IntVar(&battery, "battery", 0, "battery percentage (ev)")
	f.StringVar(&form.ChargingRequirement, "charging", "", "charging requirement (ev)")
	f.StringVar(&form.VehicleMake, "make", "", "vehicle make (ev)")
	f.StringVar(&form.VehicleModel, "model", "", "vehicle model (ev)")
	f.StringVar(&form.Issue, "issue", "", "issue code (mechanical)")
	f.Float64Var(&lat, "lat", 0, "latitude")
	f.Float64Var(&lng, "lng", 0, "longitude")
	f.StringVar(&delivery, "delivery", "", "delivery time, RFC3339")
	f.StringVar(&form.Notes, "notes", "", "notes for the agent")
	f.BoolVar(&cod, "cod", false, "pay cash on delivery")

	estimate := &cobra.Command{
		Use:   "estimate <petrol|diesel>",
		Short: "Convert between liters and rupees at the current price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client().ServiceByType(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			l, r, err := apiclient.EstimateFuel(s.Price, floatFlag(cmd.Flags(), "liters", liters), floatFlag(cmd.Flags(), "rupees", rupees))
			if err != nil {
				return err
			}
			return a.print(map[string]float64{"price_per_liter": s.Price, "liters": l, "rupees": r})
		},
	}
	estimate.Flags().Float64Var(&liters, "liters", 0, "liters wanted")
	estimate.Flags().Float64Var(&rupees, "rupees", 0, "rupees to spend")

	cmd.AddCommand(create, estimate)
	return cmd
}

// floatFlag is nil unless the flag was set, so zero stays distinguishable from absent.
func floatFlag(f *pflag.FlagSet, name string, v float64) *float64 {
	if !f.Changed(name) {
		return nil
	}
	return &v
}

func payCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "pay", Short: "Online payments"}

	var amount float64
	order := &cobra.Command{
		Use:   "order <payment-id>",
		Short: "Open a gateway order for a stored payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			co, err := a.client().CreateOrder(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			return a.print(co)
		},
	}
	order.Flags().Float64Var(&amount, "amount", 0, "amount in rupees, ignored by the server for stored payments")

	var res apiclient.CheckoutResult
	verify := &cobra.Command{
		Use:   "verify <payment-id>",
		Short: "Verify a gateway checkout result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.client().Verify(cmd.Context(), res, id)
			if err != nil {
				return err
			}
			return a.print(v)
		},
	}
	vf := verify.Flags()
	vf.StringVar(&res.RazorpayOrderID, "order-id", "", "gateway order id")
	vf.StringVar(&res.RazorpayPaymentID, "gateway-payment-id", "", "gateway payment id")
	vf.StringVar(&res.RazorpaySignature, "signature", "", "checkout signature")
	for _, name := range []string{"order-id", "gateway-payment-id", "signature"} {
		_ = verify.MarkFlagRequired(name)
	}

	cmd.AddCommand(order, verify)
	return cmd
}
