package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/sepsisx/internal/poster"
	"github.com/abdulachik/sepsisx/internal/scheduler"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Show the daily triggers",
	Long:  `Display each trigger's schedule, payload, next fire time and today's message.`,
	RunE:  runTriggers,
}

func init() {
	rootCmd.AddCommand(triggersCmd)
}

func runTriggers(cmd *cobra.Command, args []string) error {
	now := time.Now()

	fmt.Println("=== sepsisx Triggers ===")
	fmt.Println()

	for _, t := range scheduler.DefaultTriggers() {
		payload, err := t.PayloadJSON()
		if err != nil {
			return err
		}

		msg, err := poster.Compose(t.PostType, now)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", t.Name)
		fmt.Printf("  Post type:  %s\n", t.PostType)
		fmt.Printf("  Time:       %02d:%02d JST\n", t.Hour, t.Minute)
		fmt.Printf("  Schedule:   %s\n", t.CronExpression())
		fmt.Printf("  Payload:    %s\n", payload)
		fmt.Printf("  Next:       %s\n", t.Next(now).Format(time.RFC3339))
		fmt.Printf("  Length:     %d/%d\n", poster.WeightedLength(msg), poster.TwitterMaxLength)
		fmt.Println()
		fmt.Println(msg)
		fmt.Println()
	}

	return nil
}
