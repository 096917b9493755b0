package ports

import "gomiss/domain/frame"

// DatasetReader loads an external tabular dataset into a frame
type DatasetReader interface {
	Read() (*frame.Frame, error)
}
