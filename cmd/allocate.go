package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/dockyard/app"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/infra/mqtt"
)

var (
	requestsPath string
	dumpSchedule bool
	keepLog      bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate a batch of docking requests read from a YAML or JSON file",
	Long: `Reads docking requests from a file (or "-" for stdin) and processes them in
order against an empty schedule. One JSON result is printed per request.`,
	RunE: allocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&requestsPath, "file", "f", "", "requests file, - for stdin")
	allocateCmd.Flags().BoolVar(&dumpSchedule, "dump", false, "print the resulting schedule")
	allocateCmd.Flags().BoolVar(&keepLog, "record", false, "append decisions to the configured decision log")
	_ = allocateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(allocateCmd)
}

// requestFile accepts either a bare list of requests or a map with a
// requests key.
type requestFile struct {
	Requests []model.DockingRequest `yaml:"requests"`
}

// DecodeRequests parses a YAML or JSON batch of docking requests.
func DecodeRequests(r io.Reader) ([]model.DockingRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var list []model.DockingRequest
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped requestFile
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return wrapped.Requests, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func allocate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !keepLog {
		cfg.Logging.Backend = "none"
	}
	in, err := openInput(requestsPath)
	if err != nil {
		return err
	}
	reqs, err := DecodeRequests(in)
	_ = in.Close()
	if err != nil {
		return err
	}

	alloc, _, _, err := app.NewAllocator(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = alloc.Close() }()

	ctx := context.Background()
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, req := range reqs {
		res, err := alloc.ProcessDockingRequest(ctx, req)
		if err := enc.Encode(mqtt.NewResponse(req.MissionID, res, err)); err != nil {
			return err
		}
	}
	if dumpSchedule {
		enc.SetIndent("", "  ")
		return enc.Encode(alloc.Schedule())
	}
	return nil
}
