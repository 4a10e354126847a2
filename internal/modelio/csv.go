package modelio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/BorisVSchmid/SimInf/internal/engine"
)

// WriteCSV persists out's dense U buffer as a CSV with one row per time
// point and one column per (node, compartment) pair, the simplest
// serialization of the output contract for ad-hoc inspection (spec §6
// "Output sink": "in memory, as CSV, or into SQLite").
func WriteCSV(path string, out *engine.Output) error {
	if out.U == nil {
		return fmt.Errorf("modelio: WriteCSV requires a dense U buffer")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("modelio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	Nn, Nc, Tlen := out.Dims.Nn, out.Dims.Nc, out.Dims.Tlen

	header := make([]string, 0, Nn*Nc+1)
	header = append(header, "time_index")
	for node := 0; node < Nn; node++ {
		for c := 0; c < Nc; c++ {
			header = append(header, fmt.Sprintf("node%d_c%d", node, c))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, Nn*Nc+1)
	for k := 0; k < Tlen; k++ {
		base := k * Nn * Nc
		row[0] = strconv.Itoa(k)
		for i := 0; i < Nn*Nc; i++ {
			row[i+1] = strconv.Itoa(out.U[base+i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
