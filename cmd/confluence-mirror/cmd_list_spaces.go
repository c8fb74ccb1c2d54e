/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-mirror/confluence"
	"github.com/toothbrush/confluence-mirror/internal/termfmt"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, use this command.
`)

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		token, err := resolveAuthToken()
		if err != nil {
			return err
		}

		api, err := confluence.NewAPI(BaseURL, AuthUsername, token)
		if err != nil {
			return fmt.Errorf("list: couldn't instantiate Confluence API: %w", err)
		}
		api.Headers = ParsedConfig.HTTPHeaders

		// list all spaces:
		log.Printf("Listing Confluence spaces in %s...\n", BaseURL)
		spacesRemote, err := api.ListAllSpaces(ctx, IncludePersonal)
		if err != nil {
			return fmt.Errorf("list: couldn't list Confluence spaces: %w", err)
		}

		log.Printf("Found %d spaces on '%s'.\n", len(spacesRemote), BaseURL)

		spaceKeys := maps.Keys(spacesRemote)
		slices.Sort(spaceKeys)

		fmt.Printf("spaces:\n")
		for _, spaceKey := range spaceKeys {
			if s, ok := spacesRemote[spaceKey]; ok {
				fmt.Printf("  - %v: %s\n", termfmt.Bold().V(spaceKey), s.Name)
			}
		}

		return nil
	},
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}
