package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/notargets/fnknot/utils"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a time step convergence study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	defer f.Close()
	studies, err := readCSV(f)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	for _, name := range sortedNames(studies) {
		cs := studies[name]
		cs.Sort()
		orders := cs.Orders()
		fmt.Printf("Scheme = %s\n", cs.scheme)
		fmt.Printf("%12s%14s%10s\n", "dt", "error", "order")
		for i := range cs.dt {
			if i == 0 {
				fmt.Printf("%12.5e%14.6e%10s\n", cs.dt[i], cs.err[i], "-")
				continue
			}
			fmt.Printf("%12.5e%14.6e%10.3f\n", cs.dt[i], cs.err[i], orders[i-1])
		}
	}
}

// ConvergenceStudy is one scheme's error at a sequence of time steps
type ConvergenceStudy struct {
	scheme  string
	dt, err []float64
}

func NewConvergenceStudy(scheme string) *ConvergenceStudy {
	return &ConvergenceStudy{scheme: scheme}
}

func (cs *ConvergenceStudy) Add(dt, err float64) {
	cs.dt = append(cs.dt, dt)
	cs.err = append(cs.err, err)
}

// Sort orders the entries from the largest step to the smallest
func (cs *ConvergenceStudy) Sort() {
	idx := make([]int, len(cs.dt))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return cs.dt[idx[a]] > cs.dt[idx[b]] })
	dt, e := make([]float64, len(idx)), make([]float64, len(idx))
	for i, j := range idx {
		dt[i], e[i] = cs.dt[j], cs.err[j]
	}
	cs.dt, cs.err = dt, e
}

func (cs *ConvergenceStudy) Orders() []float64 {
	return utils.ObservedOrders(cs.dt, cs.err)
}

func sortedNames(studies map[string]*ConvergenceStudy) (names []string) {
	for name := range studies {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// readCSV expects a header row followed by rows of scheme, dt, error
func readCSV(r io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var (
		records [][]string
		ok      bool
		cs      *ConvergenceStudy
		dt, e   float64
	)
	studies = make(map[string]*ConvergenceStudy)
	cr := csv.NewReader(bufio.NewReader(r))
	cr.TrimLeadingSpace = true
	if records, err = cr.ReadAll(); err != nil {
		return nil, err
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: need scheme, dt and error, have %d columns", i+1, len(rec))
		}
		scheme := rec[0]
		if dt, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if e, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if cs, ok = studies[scheme]; !ok {
			cs = NewConvergenceStudy(scheme)
			studies[scheme] = cs
		}
		cs.Add(dt, e)
	}
	return
}
