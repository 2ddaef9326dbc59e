package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"crosswarped.com/aoc"
)

const (
	defaultProject     = "xword-x"
	defaultInputsTable = "xword-x.aoc.puzzle_inputs"
)

type SolvePuzzleRequest struct {
	Year  int    `json:"year"`
	Day   int    `json:"day"`
	Input string `json:"input"`
}

type SolvePuzzleResponse struct {
	Success bool   `json:"success"`
	PartOne string `json:"partOne,omitempty"`
	PartTwo string `json:"partTwo,omitempty"`
	Error   string `json:"error,omitempty"`
}

var logger = zap.NewNop()

// loadInput is swapped out in tests.
var loadInput = getInput

func getInput(ctx context.Context, year, day int) (string, error) {
	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if project == "" {
		project = defaultProject
	}
	table := os.Getenv("AOC_INPUTS_TABLE")
	if table == "" {
		table = defaultInputsTable
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return "", fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf("SELECT input FROM `%s` WHERE year = @year AND day = @day LIMIT 1", table))
	q.Location = "US"
	q.Parameters = []bigquery.QueryParameter{
		{Name: "year", Value: year},
		{Name: "day", Value: day},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("job.Read: %w", err)
	}

	var row []bigquery.Value
	err = it.Next(&row)
	if err == iterator.Done {
		return "", fmt.Errorf("no stored input for %d/%d", year, day)
	}
	if err != nil {
		return "", fmt.Errorf("it.Next: %w", err)
	}
	input, ok := row[0].(string)
	if !ok {
		return "", fmt.Errorf("row[0] is not a string: %v", row[0])
	}
	return input, nil
}

func execute(ctx context.Context, req SolvePuzzleRequest) (aoc.Answer, error) {
	if req.Year < 2015 {
		return aoc.Answer{}, fmt.Errorf("year must be at least 2015")
	}
	if req.Day < 1 || req.Day > 25 {
		return aoc.Answer{}, fmt.Errorf("day must be between 1 and 25")
	}

	solve, err := aoc.Lookup(req.Year, req.Day)
	if err != nil {
		return aoc.Answer{}, err
	}

	input := req.Input
	if strings.TrimSpace(input) == "" {
		if input, err = loadInput(ctx, req.Year, req.Day); err != nil {
			return aoc.Answer{}, fmt.Errorf("loadInput: %w", err)
		}
		logger.Info("Loaded stored input", zap.Int("year", req.Year), zap.Int("day", req.Day), zap.Int("bytes", len(input)))
	}

	deadline, ok := ctx.Deadline()
	timeout := 1 * time.Minute
	if ok {
		timeout = time.Until(deadline) - 5*time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return solve(ctx, strings.NewReader(input), logger)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func writeResponse(w http.ResponseWriter, status int, response SolvePuzzleResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Error marshaling response", zap.Error(err))
	}
}

func solvePuzzle(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		writeResponse(w, http.StatusMethodNotAllowed, SolvePuzzleResponse{
			Error: fmt.Sprintf("Method %s not allowed", r.Method),
		})
		return
	}

	var req SolvePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Error parsing JSON body", zap.Error(err))
		writeResponse(w, http.StatusBadRequest, SolvePuzzleResponse{
			Error: fmt.Sprintf("Invalid JSON: %v", err),
		})
		return
	}

	answer, err := execute(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, aoc.ErrUnknownPuzzle):
			status = http.StatusNotFound
		case errors.Is(err, aoc.ErrMalformedAlmanac), req.Year < 2015, req.Day < 1 || req.Day > 25:
			status = http.StatusBadRequest
		}
		logger.Warn("Solve failed", zap.Int("year", req.Year), zap.Int("day", req.Day), zap.Error(err))
		writeResponse(w, status, SolvePuzzleResponse{Error: err.Error()})
		return
	}

	writeResponse(w, http.StatusOK, SolvePuzzleResponse{
		Success: true,
		PartOne: answer.PartOne,
		PartTwo: answer.PartTwo,
	})
}

func main() {
	var err error
	if logger, err = zap.NewProduction(); err != nil {
		fmt.Fprintf(os.Stderr, "zap.NewProduction: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	funcframework.RegisterHTTPFunction("/solve", solvePuzzle)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		logger.Fatal("funcframework.StartHostPort", zap.Error(err))
	}
}
