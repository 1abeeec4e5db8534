package main

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/interpret"
)

func parseCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Interpret room stamp lines read from stdin",
		Long: `Read the text lines of room stamps from stdin, one stamp per block of
lines separated by a blank line, and print the rooms as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stamps, err := readStamps(cmd.InOrStdin())
			if err != nil {
				return err
			}

			parser := interpret.NewParser()
			rooms := make([]interpret.Room, 0, len(stamps))
			for _, lines := range stamps {
				room := parser.ParseLines(lines)
				if !all && !room.Identified() {
					continue
				}
				rooms = append(rooms, room)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			return enc.Encode(rooms)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also print stamps without name and code")
	return cmd
}

// readStamps splits input into blocks of non-blank lines.
func readStamps(r io.Reader) ([][]string, error) {
	var (
		stamps  [][]string
		current []string
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				stamps = append(stamps, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		stamps = append(stamps, current)
	}
	return stamps, scanner.Err()
}
