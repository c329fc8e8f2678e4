package taskdir

import "time"

func (c *Cache) GetTime() time.Time {
	t := c.mockTime.Load()
	if t == nil {
		return time.Now()
	} else {
		return *t
	}
}

func (c *Cache) SetMockTime(t time.Time) {
	c.mockTime.Store(&t)
}

func (c *Cache) UnmockTime() {
	c.mockTime.Store(nil)
}
