package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Str0ng!Pass", true},
		{"Admin123!", true},
		{"short1!A", true},
		{"Sh0rt!", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol12", false},
		{"With Space1!", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword(tt.in))
		})
	}
}

func TestLettersAndDigits(t *testing.T) {
	assert.True(t, LettersOnly("Joan Doe"))
	assert.True(t, LettersOnly("José Núñez"))
	assert.False(t, LettersOnly("Joan2"))

	assert.True(t, DigitsOnly("56911112222"))
	assert.False(t, DigitsOnly("+56911112222"))
	assert.False(t, DigitsOnly("12 34"))
}

func TestRegistration(t *testing.T) {
	v := New()

	ok := Registration{Name: "Ana", Email: "a@x.com", Phone: "56912345678", Password: "Str0ng!Pass", Confirm: "Str0ng!Pass"}
	require.NoError(t, v.Struct(ok))

	bad := Registration{Name: "Ana1", Email: "nope", Phone: "+569", Password: "weak", Confirm: "other"}
	err := v.Struct(bad)
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	for _, field := range []string{"Name", "Email", "Phone", "Password", "Confirm"} {
		assert.NotNil(t, errs.Field(field), "expected error on %s", field)
	}
	assert.Contains(t, errs.Field("Confirm").Message, "Password")
}

func TestProfile(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(Profile{Name: "Ana", Phone: "12345678"}))
	require.NoError(t, v.Struct(Profile{Name: "Ana", Phone: "12345678", Password: "longenough", Confirm: "longenough"}))

	var errs Errors
	require.True(t, errors.As(v.Struct(Profile{Name: "Ana", Phone: "1234567"}), &errs))
	assert.NotNil(t, errs.Field("Phone"))

	require.True(t, errors.As(v.Struct(Profile{Name: "Ana", Phone: "12345678", Password: "short"}), &errs))
	assert.NotNil(t, errs.Field("Password"))

	require.True(t, errors.As(v.Struct(Profile{Name: "Ana", Phone: "12345678", Password: "longenough", Confirm: "different"}), &errs))
	assert.NotNil(t, errs.Field("Confirm"))
}

func TestEmail(t *testing.T) {
	v := New()
	assert.True(t, v.Email("admin@asfalto.cl"))
	assert.False(t, v.Email("admin@"))
	assert.False(t, v.Email(""))
}

func TestPlainText(t *testing.T) {
	v := New()
	assert.Equal(t, "Hola mundo", v.PlainText("  <b>Hola</b> mundo "))
	assert.Equal(t, "Tom & Jerry", v.PlainText("Tom & Jerry"))
	assert.Equal(t, "", v.PlainText("<script>alert(1)</script>"))
}
