// Package cli implements seatctl, a terminal companion to the booking API:
// it renders seat maps, runs an interactive seat picker and looks up the
// nearest popular destination.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/iliyamo/flight-seat-booking/internal/client"
	"github.com/iliyamo/flight-seat-booking/internal/config"
	"github.com/iliyamo/flight-seat-booking/internal/geo"
	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// SeatMapSource fetches a flight's seat map from the API.
type SeatMapSource interface {
	SeatMap(ctx context.Context, flightID uint64, passengers int) (client.SeatMap, error)
}

// NewRootCmd builds the seatctl command tree. api is consulted only by
// commands given --flight; when nil a client is built from API_* env vars.
func NewRootCmd(api SeatMapSource) *cobra.Command {
	root := &cobra.Command{
		Use:           "seatctl",
		Short:         "Flight seat map tools",
		Long:          `Render seat maps, pick seats interactively and find the nearest popular destination.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	source := func() SeatMapSource {
		if api == nil {
			api = client.New(config.LoadClientConfig())
		}
		return api
	}
	root.AddCommand(newMapCmd(source), newPickCmd(source), newNearestCmd(), newVersionCmd())
	return root
}

// Execute runs seatctl and exits non-zero on error.
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the seatctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "seatctl", Version)
		},
	}
}

// layout is the seat grid a command works on, either from flags or from
// the API.
type layout struct {
	total       int
	unavailable []string
}

func resolveLayout(cmd *cobra.Command, source func() SeatMapSource, passengers int) (layout, error) {
	flightID, _ := cmd.Flags().GetUint64("flight")
	if flightID > 0 {
		m, err := source().SeatMap(cmd.Context(), flightID, passengers)
		if err != nil {
			return layout{}, fmt.Errorf("fetch seat map for flight %d: %w", flightID, err)
		}
		return layout{total: m.TotalSeats, unavailable: m.Unavailable}, nil
	}
	seats, _ := cmd.Flags().GetInt("seats")
	if seats < 1 {
		return layout{}, errors.New("--seats must be positive when --flight is not given")
	}
	taken, _ := cmd.Flags().GetString("taken")
	return layout{total: seats, unavailable: splitLabels(taken)}, nil
}

func splitLabels(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Int("seats", 60, "total seats on the aircraft")
	cmd.Flags().String("taken", "", "comma separated booked seats, e.g. A1,C4")
	cmd.Flags().Uint64("flight", 0, "load the layout of this flight from the API")
}

func newMapCmd(source func() SeatMapSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print a seat map",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveLayout(cmd, source, 0)
			if err != nil {
				return err
			}
			RenderSeatMap(cmd.OutOrStdout(), seatmap.Build(l.total, l.unavailable...))
			return nil
		},
	}
	addLayoutFlags(cmd)
	return cmd
}

func newPickCmd(source func() SeatMapSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick seats interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			passengers, _ := cmd.Flags().GetInt("passengers")
			if passengers == 0 {
				n, err := promptPassengers()
				if err != nil {
					return err
				}
				passengers = n
			}
			if passengers < 1 || passengers > service.MaxPassengers {
				return fmt.Errorf("--passengers must be between 1 and %d", service.MaxPassengers)
			}
			l, err := resolveLayout(cmd, source, passengers)
			if err != nil {
				return err
			}
			sel, err := runPicker(cmd.InOrStdin(), cmd.OutOrStdout(), seatmap.NewSelector(l.total, passengers, l.unavailable))
			if err != nil {
				return err
			}
			RenderSelection(cmd.OutOrStdout(), sel)
			return nil
		},
	}
	addLayoutFlags(cmd)
	cmd.Flags().Int("passengers", 0, "number of passengers (prompted when omitted)")
	return cmd
}

func promptPassengers() (int, error) {
	prompt := promptui.Prompt{
		Label:   "Passengers",
		Default: "1",
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil || n < 1 || n > service.MaxPassengers {
				return fmt.Errorf("enter a number from 1 to %d", service.MaxPassengers)
			}
			return nil
		},
	}
	v, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

func newNearestCmd() *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find the popular destination closest to a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			printNearest(cmd.OutOrStdout(), lat, lng)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func printNearest(w io.Writer, lat, lng float64) {
	a, km, ok := geo.Nearest(lat, lng, geo.PopularDestinations)
	if !ok {
		fmt.Fprintln(w, geo.FallbackCity)
		return
	}
	fmt.Fprintf(w, "%s (%s, %s) %.0f km\n", a.City, a.Code, a.Name, km)
}
