package metrics

type Counter interface {
	Inc()

	Add(v float64)
}

type Factory interface {
	CreateCounter(name string, description string) (Counter, error)

	Start() error

	Stop() error
}

// NewNopFactory returns a Factory whose counters discard everything.
func NewNopFactory() Factory {
	return nopFactory{}
}

type nopFactory struct{}

func (nopFactory) CreateCounter(string, string) (Counter, error) {
	return nopCounter{}, nil
}

func (nopFactory) Start() error {
	return nil
}

func (nopFactory) Stop() error {
	return nil
}

type nopCounter struct{}

func (nopCounter) Inc() {}

func (nopCounter) Add(float64) {}
