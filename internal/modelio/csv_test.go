package modelio_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BorisVSchmid/SimInf/internal/engine"
	"github.com/BorisVSchmid/SimInf/internal/modelio"
)

var _ = Describe("WriteCSV", func() {
	It("writes one header row plus one row per time point, columns in node-major compartment order", func() {
		dims := engine.Dims{Nn: 2, Nc: 2, Tlen: 2}
		out := engine.NewDenseOutput(dims, true, false)
		copy(out.U, []int{1, 2, 3, 4, 5, 6, 7, 8})

		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "out.csv")
		Expect(modelio.WriteCSV(path, out)).To(Succeed())

		contents, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, "\r")
		}
		Expect(lines[0]).To(Equal("time_index,node0_c0,node0_c1,node1_c0,node1_c1"))
		Expect(lines[1]).To(Equal("0,1,2,3,4"))
		Expect(lines[2]).To(Equal("1,5,6,7,8"))
	})

	It("rejects an output built without a dense U buffer", func() {
		out := &engine.Output{Dims: engine.Dims{Nn: 1, Nc: 1, Tlen: 1}}

		dir := GinkgoT().TempDir()
		err := modelio.WriteCSV(filepath.Join(dir, "out.csv"), out)
		Expect(err).To(HaveOccurred())
	})
})

