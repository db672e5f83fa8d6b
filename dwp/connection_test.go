package dwp_test

import (
	"testing"
	"time"

	"github.com/xraph/dialog/dwp"
)

func TestConnectionManager(t *testing.T) {
	cm := dwp.NewConnectionManager()
	c1 := dwp.NewConnection("conn_1", "user-service", &dwp.Identity{Subject: "a"}, &dwp.JSONCodec{}, nil)
	c2 := dwp.NewConnection("conn_2", "billing", &dwp.Identity{Subject: "b"}, &dwp.MsgpackCodec{}, nil)

	cm.Add(c1)
	cm.Add(c2)
	if cm.Count() != 2 {
		t.Fatalf("Count = %d, want 2", cm.Count())
	}

	got, ok := cm.Get("conn_2")
	if !ok || got.Namespace != "billing" {
		t.Errorf("Get(conn_2) = %+v, %v", got, ok)
	}
	if len(cm.All()) != 2 {
		t.Errorf("All() = %d entries", len(cm.All()))
	}

	cm.Remove("conn_1")
	if _, ok := cm.Get("conn_1"); ok {
		t.Error("conn_1 should be removed")
	}
	if cm.Count() != 1 {
		t.Errorf("Count = %d, want 1", cm.Count())
	}
}

func TestConnection_Touch(t *testing.T) {
	c := dwp.NewConnection("conn_1", "ns", nil, &dwp.JSONCodec{}, nil)
	time.Sleep(20 * time.Millisecond)
	if c.Idle() < 20*time.Millisecond {
		t.Errorf("Idle() = %v, expected at least 20ms", c.Idle())
	}
	before := c.Idle()
	c.Touch()
	if after := c.Idle(); after >= before {
		t.Errorf("Idle() after Touch = %v, want less than %v", after, before)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close without socket: %v", err)
	}
}
