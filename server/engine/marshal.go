package engine

import "fmt"

// Text forms are the record tokens, so JSON output reads like the source
// records ("N", "SA", "1NT", "4SX").

func (s Seat) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Seat) UnmarshalText(b []byte) error {
	v, err := ParseSeat(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "NS":
		*s = NS
	case "EW":
		*s = EW
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

func (c Card) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Card) UnmarshalText(b []byte) error {
	v, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Call) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Call) UnmarshalText(b []byte) error {
	v, err := ParseCall(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (v Vulnerability) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Vulnerability) UnmarshalText(b []byte) error {
	x, err := ParseVulnerability(string(b))
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func (c Contract) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
