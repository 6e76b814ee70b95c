package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/sitecrawler/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print record-type counts for a crawl's content store",
	Run:   runReport,
}

func runReport(cmd *cobra.Command, args []string) {
	settings, err := InitSettings()
	if err != nil {
		fatalf("config error: %v", err)
	}

	docStore, storeErr := store.Open(storePath(settings.DataDir, settings.Name))
	if storeErr != nil {
		fatalf("store: %v", storeErr)
	}
	defer docStore.Close()

	counts := map[store.RecordType]int{}
	iterErr := docStore.Iterate(func(_ string, r store.Record) bool {
		counts[r.Type]++
		return true
	})
	if iterErr != nil {
		fatalf("report: %v", iterErr)
	}

	encoded, _ := json.MarshalIndent(counts, "", "  ")
	fmt.Println(string(encoded))
}
