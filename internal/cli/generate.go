package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mawaqitics/internal/planner"
	"mawaqitics/internal/prayer"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		mosqueID      string
		scopeStr      string
		paddingBefore int
		paddingAfter  int
		includeSunset bool
		hijri         bool
		fasts         bool
		adhkar        bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the ICS artifacts for one mosque",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := planner.ParseScope(scopeStr)
			if err != nil {
				return err
			}

			// Flags left at their default fall back to the config;
			// explicit values, valid or not, go through as given so
			// request validation sees them.
			before, after := *a.cfg.PaddingBefore, *a.cfg.PaddingAfter
			if cmd.Flags().Changed("padding-before") {
				before = paddingBefore
			}
			if cmd.Flags().Changed("padding-after") {
				after = paddingAfter
			}

			gen, _, err := a.newGenerator()
			if err != nil {
				return err
			}

			req := planner.Request{
				MosqueID:      mosqueID,
				Scope:         scope,
				Padding:       prayer.Padding{Before: before, After: after},
				IncludeSunset: includeSunset,
			}
			req.Features.ShowHijriDate = hijri
			req.Features.IncludeVoluntaryFasts = fasts
			req.Features.IncludeAdhkar = adhkar

			result, err := gen.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "timezone:     %s\n", result.Timezone)
			fmt.Fprintf(cmd.OutOrStdout(), "prayer times: %s\n", result.PrayerTimes)
			fmt.Fprintf(cmd.OutOrStdout(), "slots:        %s\n", result.Slots)
			fmt.Fprintf(cmd.OutOrStdout(), "empty slots:  %s\n", result.EmptySlots)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mosqueID, "mosque", "m", "", "mosque identifier (required)")
	cmd.Flags().StringVarP(&scopeStr, "scope", "s", "day", "scope: day, month or year")
	cmd.Flags().IntVar(&paddingBefore, "padding-before", 0, "minutes before each prayer (defaults to config)")
	cmd.Flags().IntVar(&paddingAfter, "padding-after", 0, "minutes after each prayer (defaults to config)")
	cmd.Flags().BoolVar(&includeSunset, "include-sunset", false, "include the Chourouk event")
	cmd.Flags().BoolVar(&hijri, "hijri", false, "add Hijri date events")
	cmd.Flags().BoolVar(&fasts, "fasts", false, "add voluntary fast reminders")
	cmd.Flags().BoolVar(&adhkar, "adhkar", false, "add adhkar labels to fajr and asr")
	_ = cmd.MarkFlagRequired("mosque")

	return cmd
}
