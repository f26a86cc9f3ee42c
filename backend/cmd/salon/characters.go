package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"moviesalon/backend/internal/profiles"
)

func newCharactersCmd(profilesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List the characters available for discussions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*profilesPath)
			if err != nil {
				return err
			}

			store, err := profiles.Load(cfg.ProfilesPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profiles: %s (%d)\n\n", color.CyanString(cfg.ProfilesPath), store.Len())

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tGENDER\tAGE\tOCCUPATION\tPERSONALITY")
			for _, name := range store.Names() {
				p, _ := store.Get(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, p.Gender, p.Age, p.Occupation, p.Personality)
			}
			return w.Flush()
		},
	}
}
