package header

import "testing"

func TestSenseFlagsSkip(t *testing.T) {
	cases := []struct {
		f    SenseFlags
		want bool
	}{
		{SenseAny, false},
		{SenseEqual, false},
		{SensePreReq, false},
		{SenseRPMLib, true},
		{SenseConfig, true},
		{SensePreTrans, true},
		{SensePostTrans, true},
		{SenseEqual | SenseRPMLib, true},
	}
	for _, c := range cases {
		if got := c.f.Skip(); got != c.want {
			t.Errorf("SenseFlags(%d).Skip() = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestSplitCString(t *testing.T) {
	data := []byte("foo\x00bar\x00")
	var got []string
	for len(data) > 0 {
		adv, tok, err := splitCString(data, true)
		if err != nil {
			t.Fatal(err)
		}
		if adv == 0 {
			break
		}
		got = append(got, string(tok))
		data = data[adv:]
	}
	want := []string{"foo", "bar"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
