package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	dateFlag    string
	typeFlag    string
	startFlag   string
	courtFlag   string
	fromFlag    string
	toFlag      string
	playerAFlag string
	playerBFlag string
)

func init() {
	generateCmd.Flags().StringVar(&dateFlag, "date", "", "The date to generate matches for (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&typeFlag, "type", "singles", "The match type (singles or doubles)")
	generateWeekCmd.Flags().StringVar(&startFlag, "start", "", "The first date of the week (YYYY-MM-DD)")
	generateWeekCmd.Flags().StringVar(&typeFlag, "type", "singles", "The match type (singles or doubles)")
	freeCmd.Flags().StringVar(&courtFlag, "court", "", "The court id")
	freeCmd.Flags().StringVar(&dateFlag, "date", "", "The date to check (YYYY-MM-DD)")
	freeCmd.Flags().StringVar(&fromFlag, "from", "", "The start of the window (HH:MM)")
	freeCmd.Flags().StringVar(&toFlag, "to", "", "The end of the window (HH:MM)")
	compatCmd.Flags().StringVar(&playerAFlag, "a", "", "The first player id")
	compatCmd.Flags().StringVar(&playerBFlag, "b", "", "The second player id")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(courtsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(generateWeekCmd)
	rootCmd.AddCommand(freeCmd)
	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "List the courts in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/courts")
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate match proposals for one date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/generate", map[string]any{
			"date": dateFlag,
			"type": typeFlag,
		})
	},
}

var generateWeekCmd = &cobra.Command{
	Use:   "generate-week",
	Short: "Generate match proposals for a whole week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/generate-week", map[string]any{
			"start": startFlag,
			"type":  typeFlag,
		})
	},
}

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "Check whether a court is free in a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("court", courtFlag)
		params.Set("date", dateFlag)
		params.Set("from", fromFlag)
		params.Set("to", toFlag)
		return performGetRequest("/courts/free?" + params.Encode())
	},
}

var compatCmd = &cobra.Command{
	Use:   "compat",
	Short: "Show the compatibility score for a pair of players",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("a", playerAFlag)
		params.Set("b", playerBFlag)
		return performGetRequest("/compatibility?" + params.Encode())
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the scheduled match notification pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
