package engine

import (
	"fmt"
	"math"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

// SampleSelect draws a multiset of individuals from node's compartments
// under selector column select of E (spec §4.2, C1). The result indexes
// all Nc compartments; compartments not listed in the selector are zero.
//
// scratch must have length Nc; it is used as working storage for the
// general sampling path and is left in an undefined state on return.
func SampleSelect(
	e Sparse, uNode []int, select_, n int, proportion float64,
	stream *rng.Stream, scratch []int,
) ([]int, error) {
	Nc := len(uNode)
	result := make([]int, Nc)

	listed := e.Column(select_)
	Nstates := len(listed)

	nIndividuals := 0
	nKinds := 0
	for _, k := range listed {
		if uNode[k] > 0 {
			nKinds++
		}
		nIndividuals += uNode[k]
	}

	if n == 0 {
		n = int(math.Round(proportion * float64(nIndividuals)))
	}

	if Nstates <= 0 || n < 0 || n > nIndividuals {
		return nil, errcode.New(errcode.SampleSelect, -1, -1,
			fmt.Sprintf("select=%d n=%d proportion=%g Nstates=%d Nindividuals=%d",
				select_, n, proportion, Nstates, nIndividuals))
	}

	switch {
	case n == 0:
		return result, nil

	case n == nIndividuals:
		for _, k := range listed {
			result[k] = uNode[k]
		}
		return result, nil

	case Nstates == 1:
		result[listed[0]] = n
		return result, nil

	case nKinds == 1:
		for _, k := range listed {
			if uNode[k] > 0 {
				result[k] = n
				break
			}
		}
		return result, nil

	case Nstates == 2:
		k0, k1 := listed[0], listed[1]
		first := stream.Hypergeometric(uNode[k0], uNode[k1], n)
		result[k0] = first
		result[k1] = n - first
		return result, nil
	}

	copy(scratch, uNode)
	remaining := nIndividuals
	for ; n > 0; n-- {
		r := stream.UniformRange(float64(remaining))
		cum := float64(scratch[listed[0]])
		i := 0
		for i < len(listed)-1 && r > cum {
			i++
			cum += float64(scratch[listed[i]])
		}
		scratch[listed[i]]--
		result[listed[i]]++
		remaining--
	}

	return result, nil
}
