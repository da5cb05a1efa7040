package scdesc

import "golang.org/x/sys/unix"

// Scheduler-class descriptors. The source defines these but never actually
// registers them (each is wrapped in an #ifdef notyet that is never
// defined) — evidently authored ahead of sd_fixup support for
// ARG_SCHED_PARAM, which no release of the fuzzer ever added. This repo
// keeps that behavior: the descriptors below are built for reference and
// testing, but schedDescriptors is never called from an
// init(), so the sched group stays permanently empty, exactly as in the
// source.

// Scheduling policy constants (linux/sched.h); not exported by
// golang.org/x/sys/unix.
const (
	schedOther = 0
	schedFIFO  = 1
	schedRR    = 2
)

var schedPolicies = []uint64{
	uint64(schedFIFO),
	uint64(schedOther),
	uint64(schedRR),
}

// schedDescriptors returns the full set of sched_* descriptors. Unregistered
// by default; see the package comment above.
func schedDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Num:    unix.SYS_SCHED_SETPARAM,
			Name:   "sched_setparam",
			Nargs:  2,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgPID, Name: "pid"},
				{Type: ArgSchedParam, Name: "param"},
			},
		},
		{
			Num:    unix.SYS_SCHED_GETPARAM,
			Name:   "sched_getparam",
			Nargs:  2,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgPID, Name: "pid"},
				{Type: ArgSchedParam, Name: "param"},
			},
		},
		{
			Num:    unix.SYS_SCHED_SETSCHEDULER,
			Name:   "sched_setscheduler",
			Nargs:  3,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgPID, Name: "pid"},
				{Type: ArgCmd, Name: "policy", Cmds: schedPolicies},
				{Type: ArgSchedParam, Name: "param"},
			},
		},
		{
			Num:    unix.SYS_SCHED_GETSCHEDULER,
			Name:   "sched_getscheduler",
			Nargs:  1,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgPID, Name: "pid"},
			},
		},
		{
			Num:    unix.SYS_SCHED_YIELD,
			Name:   "sched_yield",
			Nargs:  0,
			Groups: GroupSched,
		},
		{
			Num:    unix.SYS_SCHED_GET_PRIORITY_MAX,
			Name:   "sched_get_priority_max",
			Nargs:  1,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgCmd, Name: "policy", Cmds: schedPolicies},
			},
		},
		{
			Num:    unix.SYS_SCHED_GET_PRIORITY_MIN,
			Name:   "sched_get_priority_min",
			Nargs:  1,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgCmd, Name: "policy", Cmds: schedPolicies},
			},
		},
		{
			Num:    unix.SYS_SCHED_RR_GET_INTERVAL,
			Name:   "sched_rr_get_interval",
			Nargs:  2,
			Groups: GroupSched,
			Args: [MaxArgs]ArgDesc{
				{Type: ArgPID, Name: "pid"},
				{Type: ArgTimespec, Name: "interval"},
			},
		},
	}
}
