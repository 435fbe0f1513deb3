// MIT License
//
// Copyright (c) 2024-2026 Stackmesh Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingValidator struct {
	err error
}

func (v failingValidator) Validate() error {
	return v.err
}

func TestChain(t *testing.T) {
	t.Run("With all validators passing", func(t *testing.T) {
		err := New().
			AddValidator(NewBooleanValidator(true, "should not fail")).
			AddValidator(NewEmptyStringValidator("Field", "value")).
			Validate()
		assert.NoError(t, err)
	})
	t.Run("With all errors returned by default", func(t *testing.T) {
		err := New(AllErrors()).
			AddValidator(failingValidator{err: errors.New("first")}).
			AddValidator(failingValidator{err: errors.New("second")}).
			Validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, "first")
		assert.ErrorContains(t, err, "second")
	})
	t.Run("With fail fast", func(t *testing.T) {
		err := New(FailFast()).
			AddValidator(failingValidator{err: errors.New("first")}).
			AddValidator(failingValidator{err: errors.New("second")}).
			Validate()
		require.Error(t, err)
		assert.EqualError(t, err, "first")
	})
	t.Run("With assertion", func(t *testing.T) {
		err := New(FailFast()).
			AddAssertion(false, "assertion failed").
			Validate()
		require.Error(t, err)
		assert.EqualError(t, err, "assertion failed")
	})
}

func TestBooleanValidator(t *testing.T) {
	assert.NoError(t, NewBooleanValidator(true, "unused").Validate())
	assert.EqualError(t, NewBooleanValidator(false, "broken invariant").Validate(), "broken invariant")
}

func TestEmptyStringValidator(t *testing.T) {
	assert.NoError(t, NewEmptyStringValidator("Field", "value").Validate())
	assert.EqualError(t, NewEmptyStringValidator("Field", " ").Validate(), "the [Field] is required")
}
