package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/molecula/qcore/config"
	"github.com/molecula/qcore/op"
	"github.com/molecula/qcore/region"
	"github.com/molecula/qcore/shard"
	"github.com/molecula/qcore/unshard"
)

func newWriteCommand() *cobra.Command {
	var shards int
	var rows int
	var configPath string

	cmd := &cobra.Command{
		Use:   "batched-insert",
		Short: "Shard a batched insert across N CPU shards and merge the write stats.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatchedInsert(cmd, shards, rows, configPath)
		},
	}
	cmd.Flags().IntVarP(&shards, "shards", "s", 0, "number of CPU shards (0 uses the config default)")
	cmd.Flags().IntVarP(&rows, "rows", "r", 12, "number of rows in the insert batch")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (defaults to config.NewDefaultConfig)")
	return cmd
}

func runBatchedInsert(cmd *cobra.Command, shardFlag, rowCount int, configPath string) error {
	var opts []config.Option
	if shardFlag > 0 {
		opts = append(opts, config.OptCPUShardCount(shardFlag))
	}
	qc, err := config.Load(configPath, opts...)
	if err != nil {
		return err
	}
	shardCount := qc.CPUShardCount
	batch := make([]op.Row, rowCount)
	for i := range batch {
		batch[i] = op.Row{Key: []byte(fmt.Sprintf("row-%03d", i)), Value: i}
	}
	req := op.BatchedInsert{
		Rows:          batch,
		PrimaryKey:    "id",
		Conflict:      "replace",
		ReturnChanges: true,
		Limits:        op.Limits{MaxChanges: 100},
	}

	var responses []op.BatchedWriteResponse
	relevant := 0
	for i := 0; i < shardCount; i++ {
		sharded, ok := shard.Write(req, region.CPUShard(i, shardCount))
		if !ok {
			continue
		}
		relevant++
		bi := sharded.(op.BatchedInsert)

		stats := op.WriteStats{Inserted: int64(len(bi.Rows))}
		for _, r := range bi.Rows {
			stats.Changes = append(stats.Changes, op.ChangePair{New: region.Datum(r.Key)})
		}
		responses = append(responses, op.BatchedWriteResponse{Stats: stats})
	}

	merged, err := unshard.Write(req, responses)
	if err != nil {
		return err
	}
	resp := merged.(op.BatchedWriteResponse)

	fmt.Fprintf(cmd.OutOrStdout(), "shards touched: %d/%d\n", relevant, shardCount)
	fmt.Fprintf(cmd.OutOrStdout(), "rows inserted: %d (wanted %d)\n", resp.Stats.Inserted, rowCount)
	fmt.Fprintf(cmd.OutOrStdout(), "changes returned: %d\n", len(resp.Stats.Changes))
	if int(resp.Stats.Inserted) != rowCount {
		return fmt.Errorf("lost rows across the shard/unshard round trip: got %d want %d", resp.Stats.Inserted, rowCount)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "round trip OK")
	return nil
}
