package service

import (
	"math/rand/v2"
	"sync"
)

// RandomSource es la fuente de ruido de los modelos. Float64 devuelve un valor en [0,1).
// *rand.Rand la satisface; los tests inyectan una semilla fija o un valor constante.
type RandomSource interface {
	Float64() float64
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource crea una fuente segura para requests concurrentes.
// Con seed 0 se siembra desde el generador global del runtime.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeededRandom devuelve un generador determinista sin lock, pensado para un solo goroutine.
func NewSeededRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// variance convierte una muestra en [0,1) en una desviacion en [-0.05,+0.05).
func variance(rnd RandomSource) float64 {
	if rnd == nil {
		return 0
	}
	return rnd.Float64()*0.1 - 0.05
}
