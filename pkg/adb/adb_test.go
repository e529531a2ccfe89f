package adb

import (
	"reflect"
	"testing"

	"github.com/devicelab-dev/adbflow/pkg/model"
)

func TestIntentFor(t *testing.T) {
	if got := IntentFor(model.TypeSpeech); got != IntentSpeech {
		t.Errorf("IntentFor(speech) = %q, want %q", got, IntentSpeech)
	}
	if got := IntentFor(model.TypeBarcode); got != IntentBarcode {
		t.Errorf("IntentFor(barcode) = %q, want %q", got, IntentBarcode)
	}
	// Unknown types fall back to barcode.
	if got := IntentFor(model.CommandType("bogus")); got != IntentBarcode {
		t.Errorf("IntentFor(bogus) = %q, want %q", got, IntentBarcode)
	}
}

func TestParseDeviceList(t *testing.T) {
	out := "List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"RF8M33ABCDE\tdevice product:beyond1 model:SM_G973F\n" +
		"0123456789\toffline\n" +
		"ZY22DT7VXP\tunauthorized\n" +
		"\n"

	got := parseDeviceList(out)
	want := []string{"emulator-5554", "RF8M33ABCDE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseDeviceList = %v, want %v", got, want)
	}
}

func TestParseDeviceList_Empty(t *testing.T) {
	if got := parseDeviceList("List of devices attached\n\n"); len(got) != 0 {
		t.Errorf("expected no serials, got %v", got)
	}
}

func TestFindADB_EnvOverride(t *testing.T) {
	t.Setenv(envADBPath, "/opt/custom/adb")
	path, err := findADB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/opt/custom/adb" {
		t.Errorf("findADB = %q, want env override", path)
	}
}

func TestNew_KeepsSerial(t *testing.T) {
	t.Setenv(envADBPath, "/opt/custom/adb")
	a, err := New("emulator-5554")
	if err != nil {
		t.Fatal(err)
	}
	if a.Serial() != "emulator-5554" {
		t.Errorf("serial = %q", a.Serial())
	}
}
