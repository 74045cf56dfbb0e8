package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	redisadapter "github.com/aretw0/parley/pkg/adapters/redis"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent conversations",
	Long:  `List, inspect, and remove conversations stored in Redis.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active conversations",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		defer store.Close()

		ids, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing conversations: %v\n", err)
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No active conversations found.")
			return
		}

		fmt.Println("Active Conversations:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-id>",
	Short: "Inspect the state of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conversationID := args[0]
		store := getStore(cmd)
		defer store.Close()

		state, err := store.Load(cmd.Context(), conversationID)
		if err != nil {
			fmt.Printf("Error loading conversation '%s': %v\n", conversationID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		defer store.Close()
		hasError := false

		for _, conversationID := range args {
			if err := store.Delete(cmd.Context(), conversationID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", conversationID, err)
				hasError = true
			} else {
				fmt.Printf("Removed conversation '%s'\n", conversationID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// getStore opens the Redis store from config. Session management needs a
// shared store; the in-memory one has nothing to manage.
func getStore(cmd *cobra.Command) *redisadapter.Store {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		fmt.Println("Session management requires a Redis store. Set redis.addr in the config file.")
		os.Exit(1)
	}

	storeOpts := []redisadapter.Option{}
	if cfg.Redis.TTLSeconds > 0 {
		storeOpts = append(storeOpts, redisadapter.WithTTL(time.Duration(cfg.Redis.TTLSeconds)*time.Second))
	}
	return redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
}
