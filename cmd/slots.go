package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/Eursukkul/gym-reservation/config"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/repository"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/Eursukkul/gym-reservation/pkg/database"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Inspect and configure time slot capacity",
	}
	cmd.AddCommand(newSlotsListCmd())
	cmd.AddCommand(newSlotsSetCmd())
	return cmd
}

func newSlotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the capacity of every slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db := database.Open(cfg)

			slotRepo := repository.NewTimeSlotRepository(db)
			capacity := service.NewCapacityService(repository.NewReservationRepository(db), slotRepo, cfg.DefaultSlotCapacity)

			configured, err := slotRepo.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			custom := make(map[string]bool, len(configured))
			for _, ts := range configured {
				custom[ts.Time] = true
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tMAX\tSOURCE")
			for _, slot := range models.SlotLabels {
				maxCapacity, err := capacity.ResolveMaxCapacity(cmd.Context(), slot)
				if err != nil {
					return err
				}
				source := "default"
				if custom[slot] {
					source = "configured"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", slot, maxCapacity, source)
			}
			return w.Flush()
		},
	}
}

// newSlotsSetCmd writes the capacity directly. It does not broadcast, running replicas pick the
// row up on their next read.
func newSlotsSetCmd() *cobra.Command {
	var slot string
	var maxCapacity int

	c := &cobra.Command{
		Use:   "set",
		Short: "Set the maximum capacity of one slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db := database.Open(cfg)

			svc := service.NewTimeSlotService(repository.NewTimeSlotRepository(db), nil)
			ts, err := svc.SetCapacity(cmd.Context(), slot, maxCapacity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slot %s max_capacity=%d\n", ts.Time, ts.MaxCapacity)
			return nil
		},
	}

	c.Flags().StringVar(&slot, "time", "", `slot label, e.g. "10:00"`)
	c.Flags().IntVar(&maxCapacity, "max", 0, "maximum guests for the slot")
	_ = c.MarkFlagRequired("time")
	_ = c.MarkFlagRequired("max")
	return c
}
