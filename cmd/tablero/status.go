package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tablero/internal/dashboard"
	"tablero/pkg/tablero"
)

var (
	statusAddr string

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Summarise the streams of a running server",
		RunE:  runStatus,
	}
)

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "server base URL (default: http://<server.host>:<server.port>)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr := statusAddr
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr = "http://" + cfg.Server.Addr()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	views, err := tablero.NewClient(addr).Streams(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		n := "-"
		if v.Table != nil {
			n = strconv.Itoa(len(v.Table.Rows))
		}
		updated := "-"
		if !v.UpdatedAt.IsZero() {
			updated = humanize.Time(v.UpdatedAt)
		}
		rows = append(rows, []string{v.Name, v.State.String(), n, updated, v.Message})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STREAM", "STATE", "ROWS", "UPDATED", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 1 && row >= 0 && row < len(views) {
				switch views[row].State {
				case dashboard.StateLoaded:
					return s.Foreground(lipgloss.Color("10"))
				case dashboard.StateFailed:
					return s.Foreground(lipgloss.Color("9"))
				}
			}
			return s
		})
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
