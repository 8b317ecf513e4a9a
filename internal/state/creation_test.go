package state

import "testing"

func TestCreation_Transitions(t *testing.T) {
	var c Creation

	if c.Phase() != CreationIdle {
		t.Fatalf("initial phase = %v; want idle", c.Phase())
	}

	c.begin()
	if c.Phase() != CreationInProgress {
		t.Errorf("phase after begin = %v; want in progress", c.Phase())
	}

	c.succeed()
	if c.Phase() != CreationSucceeded {
		t.Errorf("phase after succeed = %v; want succeeded", c.Phase())
	}

	c.begin()
	c.fail("boom")
	if c.Phase() != CreationFailed || c.Message() != "boom" {
		t.Errorf("phase = %v message = %q; want failed/boom", c.Phase(), c.Message())
	}

	// begin clears the previous failure message
	c.begin()
	if c.Message() != "" {
		t.Errorf("message after begin = %q; want empty", c.Message())
	}
}

func TestCreation_ResetFromAnyState(t *testing.T) {
	states := []func(c *Creation){
		func(c *Creation) {},
		func(c *Creation) { c.begin() },
		func(c *Creation) { c.begin(); c.succeed() },
		func(c *Creation) { c.begin(); c.fail("x") },
	}
	for i, prep := range states {
		var c Creation
		prep(&c)
		c.Reset()
		if c.Phase() != CreationIdle || c.Message() != "" {
			t.Errorf("case %d: after Reset phase = %v message = %q", i, c.Phase(), c.Message())
		}
	}
}
