package engine

// ListMeta describes a structural list edit made through
// ChangeStateDirectly.
type ListMeta struct {
	// Append marks the edit as adding elements. Their fields register
	// themselves, so the validation pass skips array elements.
	Append bool
}

// ChangeStateDirectly writes v at p as a deferred task, so list helpers can
// replace a whole array after the current unit of work settles. The
// returned channel receives the outcome once, then closes.
//
// Called outside any unit of work the task runs before ChangeStateDirectly
// returns; inside one (from a listener, or within Batch) it runs when that
// unit ends.
func (e *Engine) ChangeStateDirectly(p string, v any, meta ListMeta) <-chan error {
	ack := make(chan error, 1)
	reply := func(err error) {
		ack <- err
		close(ack)
	}

	w, err := e.prepare(p, v)
	if err != nil {
		reply(err)
		return ack
	}

	e.begin()
	e.queue.Enqueue(task{
		name:    "change state " + w.path.String(),
		fn:      func() { reply(e.changeDirect(w, meta)) },
		dropped: reply,
	})
	// Drain errors reach the caller through the dropped callback.
	_ = e.end()
	return ack
}

func (e *Engine) changeDirect(w write, meta ListMeta) error {
	if err := e.checkStrict(w); err != nil {
		return err
	}
	if _, err := e.apply(w, false); err != nil {
		return err
	}
	return e.validatePath(w.path, triggerChange, validateOptions{skipElements: meta.Append})
}
