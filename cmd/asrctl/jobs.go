package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect or cancel jobs on a running server",
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job_id>",
	Short: "Fetch a job's current status",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printJSONResponse(http.MethodGet, "/api/v1/transcribe/jobs/"+args[0])
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job_id>",
	Short: "Cancel a pending or processing job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printJSONResponse(http.MethodDelete, "/api/v1/transcribe/jobs/"+args[0])
	},
}

func init() {
	jobsCmd.AddCommand(jobsGetCmd, jobsCancelCmd)
	rootCmd.AddCommand(jobsCmd)
}

func printJSONResponse(method, path string) {
	req, err := http.NewRequest(method, resolvedServerURL()+path, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build request:", err)
		os.Exit(1)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request failed:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read response:", err)
		os.Exit(1)
	}

	var pretty interface{}
	if err := json.Unmarshal(body, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(body))

	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}
