package zlink

// Chain is the pipelining builder: each call appends a framed
// Call to the Connection's staging buffer without writing it; Send flushes
// the whole batch in one WriteAll and returns the replies in enqueue order.
type Chain struct {
	proxy   *Proxy
	entries []chainEntry
	err     error
}

type chainEntry struct {
	oneway bool
}

// Chain starts a new pipelined batch on this Proxy's Connection. If the
// Proxy was built with WithPipelining(false), every Add/AddOneway is a
// no-op and Send returns ErrPipeliningDisabled immediately.
func (p *Proxy) Chain() *Chain {
	c := &Chain{proxy: p}
	if !p.config.Pipelining {
		c.err = ErrPipeliningDisabled
	}
	return c
}

// Add enqueues a non-oneway Call expecting exactly one Reply.
func (c *Chain) Add(method string, params any) *Chain {
	if c.err != nil {
		return c
	}
	call, err := c.buildCall(method, params, false)
	if err != nil {
		c.err = err
		return c
	}
	if err := c.proxy.conn.Write.Enqueue(call); err != nil {
		c.err = err
		return c
	}
	c.entries = append(c.entries, chainEntry{oneway: false})
	return c
}

// AddOneway enqueues a oneway Call. It consumes no reply slot: Replies will
// skip over it.
func (c *Chain) AddOneway(method string, params any) *Chain {
	if c.err != nil {
		return c
	}
	call, err := c.buildCall(method, params, true)
	if err != nil {
		c.err = err
		return c
	}
	if err := c.proxy.conn.Write.Enqueue(call); err != nil {
		c.err = err
		return c
	}
	c.entries = append(c.entries, chainEntry{oneway: true})
	return c
}

func (c *Chain) buildCall(method string, params any, oneway bool) (*Call, error) {
	call := &Call{Method: method, Oneway: oneway}
	if params != nil {
		b, err := marshalOrNil(params)
		if err != nil {
			return nil, &FrameMalformedError{Err: err}
		}
		call.Parameters = b
	}
	return call, nil
}

// Send flushes the staged batch in one write and returns a ChainReplies
// sequence, one reply per non-oneway enqueued Call, in enqueue order. Any
// error building or enqueuing an earlier Call is returned here instead.
func (c *Chain) Send() (*ChainReplies, error) {
	if c.err != nil {
		return nil, c.err
	}
	if err := c.proxy.conn.Write.FlushEnqueued(); err != nil {
		return nil, err
	}
	return &ChainReplies{conn: c.proxy.conn, entries: c.entries}, nil
}

// ChainReplies is the lazy sequence of typed replies returned by
// Chain.Send. Replies arrive in strict FIFO order with respect to the
// Calls that were enqueued on the same Connection; dropping it
// mid-way simply stops reading further replies, which will be consumed (or
// not) by whatever the caller does with the Connection next.
type ChainReplies struct {
	conn    *Connection
	entries []chainEntry
	i       int
}

// Next decodes the next non-oneway reply into out/userErr, skipping over
// any oneway entries, and reports whether a reply was produced. Any
// transport or parse error aborts the remaining sequence with that error.
func (cr *ChainReplies) Next(out, userErr any) (ok bool, err error) {
	for cr.i < len(cr.entries) {
		entry := cr.entries[cr.i]
		cr.i++
		if entry.oneway {
			continue
		}
		reply, err := cr.conn.Read.ReceiveReply()
		if err != nil {
			cr.i = len(cr.entries)
			return false, err
		}
		if err := decodeReply(reply, out, userErr); err != nil {
			if _, malformed := err.(*FrameMalformedError); malformed {
				cr.i = len(cr.entries)
			}
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Remaining reports how many replies (excluding skipped oneway entries)
// are still expected.
func (cr *ChainReplies) Remaining() int {
	n := 0
	for _, e := range cr.entries[cr.i:] {
		if !e.oneway {
			n++
		}
	}
	return n
}
