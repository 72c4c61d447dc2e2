package domain

// Actor identifies who performed an operation. It is threaded explicitly
// into every lifecycle call so the services stay pure with respect to their
// inputs; identity resolution happens outside this module.
type Actor struct {
	ID      string
	Display string
}
