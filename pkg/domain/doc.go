/*
Package domain contains the core domain models of the progressforms navigator.

It defines the fundamental entities of the multi-step form state machine: the Form and its
ordered Panels, the field and group descriptors the validation gate inspects, the progress
Indicator states, and the persistable navigator State. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Form: an ordered, fixed-length sequence of Panels plus navigation Settings.
  - Panel: one step of the form (required Fields, required Groups, optional Check).
  - FieldRef: the element blamed when a panel fails validation.
  - Transition: the outcome of a navigation request (advanced, retreated, blocked, noop, ignored).
  - State: a snapshot of a navigator (current/previous index, validated flags, indicators).
*/
package domain
