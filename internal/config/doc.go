// Package config loads qmnist settings from a YAML file.
//
// Every field has a default (see Default), so a config file only needs the
// keys it changes:
//
//	weights: ./weights
//	pipeline:
//	  quantizer: fixed     # fixed | float
//	  clamp: full          # full | symmetric
//	  activations: [relu, relu6]
//	bench:
//	  iterations: 1000
//	  rounds: 10
//	eval:
//	  workers: 4
//	log:
//	  level: debug
//
// Command line flags override values loaded here.
package config
