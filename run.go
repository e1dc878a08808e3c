package pipeline

// RunSlice builds a Dispatcher configured by opts, submits every element of
// inputs in order, closes the Dispatcher once all of them have been mapped
// and reduced, and returns the first error encountered (construction,
// submission, or pipeline failure). It owns the Dispatcher's entire
// lifecycle.
func RunSlice[I, M any](inputs []I, mapper Mapper[I, M], reducer Reducer[M], opts ...Option) error {
	d, err := New[I, M](mapper, reducer, opts...)
	if err != nil {
		return err
	}

	for _, item := range inputs {
		if _, err := d.Submit(item); err != nil {
			_ = d.Close()
			return err
		}
	}

	return d.Close()
}
