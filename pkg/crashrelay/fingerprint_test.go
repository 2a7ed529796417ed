package crashrelay

import "testing"

func TestFingerprint_Stability(t *testing.T) {
	report := Report{
		EventID:       "evt-123",
		ExceptionType: "*net.OpError",
		Message:       "connection timed out after 3000ms",
		Addresses:     StackTrace{0x4a2f10, 0x4a1e00},
	}

	fp1 := Fingerprint(report)
	fp2 := Fingerprint(report)

	if fp1 != fp2 {
		t.Errorf("Same report produced different fingerprints: %q vs %q", fp1, fp2)
	}

	// Should be 32 hex characters (16 bytes)
	if len(fp1) != 32 {
		t.Errorf("Fingerprint length = %d, want 32", len(fp1))
	}
}

func TestFingerprint_IgnoresVolatileMessageData(t *testing.T) {
	a := Report{
		ExceptionType: "*net.OpError",
		Message:       "connection timed out after 3000ms (handle 0x7fa2b800)",
	}
	b := Report{
		ExceptionType: "*net.OpError",
		Message:       "connection timed out after 15000ms (handle 0x7fa99c10)",
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("same failure with different timings/addresses should hash identically")
	}
}

func TestFingerprint_IgnoresAddresses(t *testing.T) {
	a := Report{
		ExceptionType: "FooError",
		Message:       "boom",
		Addresses:     StackTrace{0x1, 0x2},
	}
	b := Report{
		ExceptionType: "FooError",
		Message:       "boom",
		Addresses:     StackTrace{0x9, 0x8, 0x7},
	}

	// Module bases move between runs; addresses must not affect grouping.
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint should not depend on raw addresses")
	}
}

func TestFingerprint_DifferentTypes_DifferentFingerprints(t *testing.T) {
	a := Report{ExceptionType: "FooError", Message: "boom"}
	b := Report{ExceptionType: "BarError", Message: "boom"}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different exception types should not collide")
	}
}
