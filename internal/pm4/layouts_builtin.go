package pm4

import "gputrace/internal/gfx"

func field(name string, dw int, off, width uint8) Field {
	return Field{Name: name, Dword: dw, Offset: off, Width: width}
}

func hexField(name string, dw int, off, width uint8) Field {
	return Field{Name: name, Dword: dw, Offset: off, Width: width, Format: FormatHex}
}

func dword(name string, dw int) Field { return field(name, dw, 0, 32) }

func hexDword(name string, dw int) Field { return hexField(name, dw, 0, 32) }

func enumField(name string, dw int, off, width uint8, e *Enum) Field {
	return Field{Name: name, Dword: dw, Offset: off, Width: width, Enum: e}
}

func reserved(dw int, off, width uint8) Field {
	return Field{Name: "reserved", Dword: dw, Offset: off, Width: width, Reserved: true}
}

func optional(f Field) Field {
	f.Optional = true
	return f
}

var (
	enumMicroEngine = NewEnum("engine_sel", map[uint32]string{0: "micro_engine"})
	enumAcquireEng  = NewEnum("engine_sel", map[uint32]string{1: "micro_engine"})
	enumCachePolicy = NewEnum("cache_policy", map[uint32]string{0: "lru", 1: "stream"})
	enumCompareFunc = NewEnum("function", map[uint32]string{
		0: "always_pass",
		1: "less_than_ref_value",
		2: "less_than_equal_to_the_ref_value",
		3: "equal_to_the_reference_value",
		4: "not_equal_reference_value",
		5: "greater_than_or_equal_reference_value",
		6: "greater_than_reference_value",
	})
	enumClearStateCmd = NewEnum("cmd", map[uint32]string{
		0: "clear_state",
		1: "push_state",
		2: "pop_state",
		3: "push_clear_state",
	})
	enumAtomCmpSwap  = NewEnum("atom_cmp_swap", map[uint32]string{0: "dont_repeat", 1: "repeat_until_pass"})
	enumAtomComplete = NewEnum("atom_complete", map[uint32]string{0: "dont_wait", 1: "wait_for_completion"})
	enumAtomRead     = NewEnum("atom_read", map[uint32]string{0: "dont_read_preop_data", 1: "read_preop_data"})
	enumAtomRdCntl   = NewEnum("atom_rd_cntl", map[uint32]string{
		0: "32bits_1returnval",
		1: "32bits_2returnval",
		2: "64bits_1returnval",
		3: "64bits_2returnval",
	})
	enumPollSpace  = NewEnum("poll_space", map[uint32]string{0: "register", 1: "memory"})
	enumWriteSpace = NewEnum("write_space", map[uint32]string{0: "register", 1: "memory", 2: "scratch"})
	enumCopySrcSel = NewEnum("src_sel", map[uint32]string{
		0:  "mem_mapped_register",
		1:  "memory",
		2:  "tc_l2",
		3:  "gds",
		4:  "perfcounters",
		5:  "immediate_data",
		6:  "atomic_return_data",
		7:  "gds_atomic_return_data0",
		8:  "gds_atomic_return_data1",
		9:  "gpu_clock_count",
		10: "system_clock_count",
	})
	enumCopyDstSel = NewEnum("dst_sel", map[uint32]string{
		0: "mem_mapped_register",
		1: "memory_sync_across_grbm",
		2: "tc_l2",
		3: "gds",
		4: "perfcounters",
		5: "memory",
	})
	enumCountSel  = NewEnum("count_sel", map[uint32]string{0: "32_bits_of_data", 1: "64_bits_of_data"})
	enumWrConfirm = NewEnum("wr_confirm", map[uint32]string{0: "do_not_wait_for_confirmation", 1: "wait_for_confirmation"})
	enumDmaDstSel = NewEnum("dst_sel", map[uint32]string{
		0: "dst_addr_using_das",
		1: "gds",
		2: "dst_nowhere",
		3: "dst_addr_using_l2",
	})
	enumDmaSrcSel = NewEnum("src_sel", map[uint32]string{
		0: "src_addr_using_sas",
		1: "gds",
		2: "data",
		3: "src_addr_using_l2",
	})
	enumAddrSpace = NewEnum("addr_space", map[uint32]string{0: "memory", 1: "register"})
	enumAddrIncr  = NewEnum("addr_incr", map[uint32]string{0: "increment", 1: "no_increment"})
	enumEventIdx  = NewEnum("event_index", map[uint32]string{
		0: "other",
		1: "zpass_pixel_pipe_stat_control_or_dump",
		2: "sample_pipelinestats",
		3: "sample_streamoutstat",
		4: "cs_vs_ps_partial_flush",
	})
	enumReleaseEventIdx = NewEnum("event_index", map[uint32]string{5: "end_of_pipe", 6: "shader_done"})
	enumReleaseDstSel   = NewEnum("dst_sel", map[uint32]string{
		0: "memory_controller",
		1: "tc_l2",
		2: "queue_write_pointer_register",
		3: "queue_write_pointer_poll_mask_bit",
	})
	enumReleaseIntSel = NewEnum("int_sel", map[uint32]string{
		0: "none",
		1: "send_interrupt_only",
		2: "send_interrupt_after_write_confirm",
		3: "send_data_after_write_confirm",
		4: "unconditionally_send_int_ctxid",
		5: "conditionally_send_int_ctxid_based_on_32_bit_compare",
		6: "conditionally_send_int_ctxid_based_on_64_bit_compare",
	})
	enumReleaseDataSel = NewEnum("data_sel", map[uint32]string{
		0: "none",
		1: "send_32_bit_low",
		2: "send_64_bit_data",
		3: "send_gpu_clock_counter",
		4: "send_cp_perfcounter_hi_lo",
		5: "store_gds_data_to_memory",
	})
	enumMemSpace     = NewEnum("mem_space", map[uint32]string{0: "register_space", 1: "memory_space"})
	enumWaitOp       = NewEnum("operation", map[uint32]string{0: "wait_reg_mem", 2: "wait_reg_mem_cond", 3: "wait_mem_preemptable"})
	enumWriteDstSel  = NewEnum("dst_sel", map[uint32]string{0: "mem_mapped_register", 1: "memory_sync_across_grbm", 2: "tc_l2", 3: "gds", 5: "memory"})
	enumWriteIncr    = NewEnum("addr_incr", map[uint32]string{0: "increment_address", 1: "do_not_increment_address"})
	enumWriteConfirm = NewEnum("wr_confirm", map[uint32]string{0: "do_not_wait_for_write_confirmation", 1: "wait_for_write_confirmation"})
	enumIndexType    = NewEnum("index_type", map[uint32]string{0: "index_16", 1: "index_32", 2: "index_8"})
	enumSwapMode     = NewEnum("swap_mode", map[uint32]string{0: "none", 1: "8_in_16", 2: "8_in_32", 3: "8_in_64"})
	enumFrameCommand = NewEnum("command", map[uint32]string{0: "kmd_frame_begin", 1: "kmd_frame_end"})
	enumTmz          = NewEnum("tmz", map[uint32]string{0: "tmz_off", 1: "tmz_on"})
	enumPreambleCmd  = NewEnum("command", map[uint32]string{
		0: "preamble_begin",
		1: "preamble_end",
		2: "begin_of_clear_state_initialization",
		3: "end_of_clear_state_initialization",
	})
)

// setRegLayout covers the SET_*_REG family: a register offset followed by
// one value per consecutive register.
func setRegLayout(op Opcode, mnemonic string, gen gfx.Generation) Layout {
	return Layout{
		Opcode: op, Mnemonic: mnemonic, Generation: gen, MinDwords: 3,
		Fields: []Field{
			hexField("reg_offset", 0, 0, 16),
			reserved(0, 16, 16),
		},
		Tail: "reg_data", TailDword: 1,
	}
}

func dummyLayout(op Opcode, mnemonic string) Layout {
	return Layout{
		Opcode: op, Mnemonic: mnemonic, MinDwords: 2,
		Fields: []Field{hexDword("dummy_data", 0)},
	}
}

func builtinLayouts() []Layout {
	waitRegMemCntl := []Field{
		enumField("function", 0, 0, 3, enumCompareFunc),
		reserved(0, 3, 1),
		enumField("mem_space", 0, 4, 2, enumMemSpace),
		enumField("operation", 0, 6, 2, enumWaitOp),
		enumField("engine_sel", 0, 8, 2, enumMicroEngine),
		reserved(0, 10, 15),
	}

	return []Layout{
		{
			Opcode: OpNop, Mnemonic: "NOP", MinDwords: 1,
			Tail: "data", TailDword: 0,
		},
		{
			Opcode: OpClearState, Mnemonic: "CLEAR_STATE", MinDwords: 2,
			Fields: []Field{
				enumField("cmd", 0, 0, 4, enumClearStateCmd),
				reserved(0, 4, 28),
			},
		},
		{
			Opcode: OpDispatchDirect, Mnemonic: "DISPATCH_DIRECT", MinDwords: 5,
			Fields: []Field{
				dword("dim_x", 0),
				dword("dim_y", 1),
				dword("dim_z", 2),
				hexDword("dispatch_initiator", 3),
			},
		},
		{
			Opcode: OpDispatchIndirect, Mnemonic: "DISPATCH_INDIRECT", MinDwords: 3,
			Fields: []Field{
				hexDword("data_offset", 0),
				hexDword("dispatch_initiator", 1),
			},
		},
		{
			Opcode: OpAtomicGDS, Mnemonic: "ATOMIC_GDS", MinDwords: 11,
			Fields: []Field{
				field("atom_op", 0, 0, 7),
				reserved(0, 7, 9),
				enumField("atom_cmp_swap", 0, 16, 1, enumAtomCmpSwap),
				enumField("atom_complete", 0, 17, 1, enumAtomComplete),
				enumField("atom_read", 0, 18, 1, enumAtomRead),
				enumField("atom_rd_cntl", 0, 19, 2, enumAtomRdCntl),
				reserved(0, 21, 9),
				enumField("engine_sel", 0, 30, 2, enumMicroEngine),
				field("auto_inc_bytes", 1, 0, 6),
				reserved(1, 6, 2),
				field("dmode", 1, 8, 1),
				reserved(1, 9, 23),
				hexField("atom_base", 2, 0, 16),
				reserved(2, 16, 16),
				field("atom_size", 3, 0, 16),
				reserved(3, 16, 16),
				field("atom_offset0", 4, 0, 8),
				reserved(4, 8, 8),
				field("atom_offset1", 4, 16, 8),
				reserved(4, 24, 8),
				hexDword("atom_dst", 5),
				hexDword("atom_src0", 6),
				hexDword("atom_src0_u", 7),
				hexDword("atom_src1", 8),
				hexDword("atom_src1_u", 9),
			},
		},
		{
			Opcode: OpDrawIndirect, Mnemonic: "DRAW_INDIRECT", MinDwords: 5,
			Fields: []Field{
				hexDword("data_offset", 0),
				hexField("start_vtx_loc", 1, 0, 16),
				reserved(1, 16, 16),
				hexField("start_inst_loc", 2, 0, 16),
				reserved(2, 16, 16),
				hexDword("draw_initiator", 3),
			},
		},
		{
			Opcode: OpDrawIndexIndirect, Mnemonic: "DRAW_INDEX_INDIRECT", MinDwords: 5,
			Fields: []Field{
				hexDword("data_offset", 0),
				hexField("base_vtx_loc", 1, 0, 16),
				hexField("start_indx_loc", 1, 16, 16),
				hexField("start_inst_loc", 2, 0, 16),
				reserved(2, 16, 12),
				field("start_indx_enable", 2, 28, 1),
				reserved(2, 29, 3),
				hexDword("draw_initiator", 3),
			},
		},
		{
			Opcode: OpDrawIndex2, Mnemonic: "DRAW_INDEX_2", MinDwords: 6,
			Fields: []Field{
				dword("max_size", 0),
				hexDword("index_base_lo", 1),
				hexDword("index_base_hi", 2),
				dword("index_count", 3),
				hexDword("draw_initiator", 4),
			},
		},
		{
			Opcode: OpContextControl, Mnemonic: "CONTEXT_CONTROL", MinDwords: 3,
			Fields: []Field{
				field("load_global_config", 0, 0, 1),
				field("load_per_context_state", 0, 1, 1),
				reserved(0, 2, 13),
				field("load_global_uconfig", 0, 15, 1),
				field("load_gfx_sh_regs", 0, 16, 1),
				reserved(0, 17, 7),
				field("load_cs_sh_regs", 0, 24, 1),
				reserved(0, 25, 3),
				field("load_ce_ram", 0, 28, 1),
				reserved(0, 29, 2),
				field("update_load_enables", 0, 31, 1),
				field("shadow_global_config", 1, 0, 1),
				field("shadow_per_context_state", 1, 1, 1),
				reserved(1, 2, 13),
				field("shadow_global_uconfig", 1, 15, 1),
				field("shadow_gfx_sh_regs", 1, 16, 1),
				reserved(1, 17, 7),
				field("shadow_cs_sh_regs", 1, 24, 1),
				reserved(1, 25, 6),
				field("update_shadow_enables", 1, 31, 1),
			},
		},
		{
			Opcode: OpIndexType, Mnemonic: "INDEX_TYPE", MinDwords: 2,
			Fields: []Field{
				enumField("index_type", 0, 0, 2, enumIndexType),
				enumField("swap_mode", 0, 2, 2, enumSwapMode),
				reserved(0, 4, 28),
			},
		},
		{
			Opcode: OpDrawIndexAuto, Mnemonic: "DRAW_INDEX_AUTO", MinDwords: 3,
			Fields: []Field{
				dword("index_count", 0),
				hexDword("draw_initiator", 1),
			},
		},
		{
			Opcode: OpNumInstances, Mnemonic: "NUM_INSTANCES", MinDwords: 2,
			Fields: []Field{dword("num_instances", 0)},
		},
		{
			Opcode: OpWriteData, Mnemonic: "WRITE_DATA", MinDwords: 4,
			Fields: []Field{
				reserved(0, 0, 8),
				enumField("dst_sel", 0, 8, 4, enumWriteDstSel),
				reserved(0, 12, 4),
				enumField("addr_incr", 0, 16, 1, enumWriteIncr),
				reserved(0, 17, 2),
				field("resume_vf", 0, 19, 1),
				enumField("wr_confirm", 0, 20, 1, enumWriteConfirm),
				reserved(0, 21, 4),
				enumField("cache_policy", 0, 25, 2, enumCachePolicy),
				reserved(0, 27, 3),
				enumField("engine_sel", 0, 30, 2, enumMicroEngine),
				hexDword("dst_addr_lo", 1),
				hexDword("dst_mem_addr_hi", 2),
			},
			Tail: "data", TailDword: 3,
		},
		{
			Opcode: OpWaitRegMem, Mnemonic: "WAIT_REG_MEM", MinDwords: 7,
			Fields: append(append([]Field(nil), waitRegMemCntl...),
				hexDword("poll_addr_lo", 1),
				hexDword("poll_addr_hi", 2),
				hexDword("reference", 3),
				hexDword("mask", 4),
				field("poll_interval", 5, 0, 16),
				reserved(5, 16, 16),
			),
		},
		{
			Opcode: OpWaitRegMem64, Mnemonic: "WAIT_REG_MEM64", MinDwords: 9,
			Fields: append(append([]Field(nil), waitRegMemCntl...),
				hexDword("poll_addr_lo", 1),
				hexDword("poll_addr_hi", 2),
				hexDword("reference", 3),
				hexDword("reference_hi", 4),
				hexDword("mask", 5),
				hexDword("mask_hi", 6),
				field("poll_interval", 7, 0, 16),
				reserved(7, 16, 16),
			),
		},
		{
			Opcode: OpCopyData, Mnemonic: "COPY_DATA", MinDwords: 6,
			Fields: []Field{
				enumField("src_sel", 0, 0, 4, enumCopySrcSel),
				reserved(0, 4, 4),
				enumField("dst_sel", 0, 8, 4, enumCopyDstSel),
				reserved(0, 12, 1),
				enumField("src_cache_policy", 0, 13, 2, enumCachePolicy),
				reserved(0, 15, 1),
				enumField("count_sel", 0, 16, 1, enumCountSel),
				reserved(0, 17, 3),
				enumField("wr_confirm", 0, 20, 1, enumWrConfirm),
				reserved(0, 21, 4),
				enumField("dst_cache_policy", 0, 25, 2, enumCachePolicy),
				reserved(0, 27, 3),
				enumField("engine_sel", 0, 30, 2, enumMicroEngine),
				hexDword("src_addr_lo", 1),
				hexDword("src_addr_hi", 2),
				hexDword("dst_addr_lo", 3),
				hexDword("dst_addr_hi", 4),
			},
		},
		dummyLayout(OpPfpSyncMe, "PFP_SYNC_ME"),
		{
			Opcode: OpCondWrite, Mnemonic: "COND_WRITE", MinDwords: 9,
			Fields: []Field{
				enumField("function", 0, 0, 3, enumCompareFunc),
				reserved(0, 3, 1),
				enumField("poll_space", 0, 4, 1, enumPollSpace),
				reserved(0, 5, 3),
				enumField("write_space", 0, 8, 2, enumWriteSpace),
				reserved(0, 10, 22),
				hexDword("poll_address_lo", 1),
				hexDword("poll_address_hi", 2),
				hexDword("reference", 3),
				hexDword("mask", 4),
				hexDword("write_address_lo", 5),
				hexDword("write_address_hi", 6),
				hexDword("write_data", 7),
			},
		},
		{
			Opcode: OpEventWrite, Mnemonic: "EVENT_WRITE", MinDwords: 2,
			Fields: []Field{
				hexField("event_type", 0, 0, 6),
				reserved(0, 6, 2),
				enumField("event_index", 0, 8, 4, enumEventIdx),
				reserved(0, 12, 20),
				optional(reserved(1, 0, 3)),
				optional(hexField("address_lo", 1, 3, 29)),
				optional(hexDword("address_hi", 2)),
			},
		},
		{
			Opcode: OpReleaseMem, Mnemonic: "RELEASE_MEM", Generation: gfx.Gen9, MinDwords: 8,
			Fields: []Field{
				hexField("event_type", 0, 0, 6),
				reserved(0, 6, 2),
				enumField("event_index", 0, 8, 4, enumReleaseEventIdx),
				field("tcl1_vol_action_ena", 0, 12, 1),
				field("tc_vol_action_ena", 0, 13, 1),
				reserved(0, 14, 1),
				field("tc_wb_action_ena", 0, 15, 1),
				field("tcl1_action_ena", 0, 16, 1),
				field("tc_action_ena", 0, 17, 1),
				reserved(0, 18, 1),
				field("tc_nc_action_ena", 0, 19, 1),
				field("tc_wc_action_ena", 0, 20, 1),
				field("tc_md_action_ena", 0, 21, 1),
				reserved(0, 22, 3),
				enumField("cache_policy", 0, 25, 2, enumCachePolicy),
				reserved(0, 27, 1),
				field("execute", 0, 28, 1),
				reserved(0, 29, 3),
				reserved(1, 0, 16),
				enumField("dst_sel", 1, 16, 2, enumReleaseDstSel),
				reserved(1, 18, 6),
				enumField("int_sel", 1, 24, 3, enumReleaseIntSel),
				reserved(1, 27, 2),
				enumField("data_sel", 1, 29, 3, enumReleaseDataSel),
				hexDword("address_lo", 2),
				hexDword("address_hi", 3),
				hexDword("data_lo", 4),
				hexDword("data_hi", 5),
				hexDword("int_ctxid", 6),
			},
		},
		{
			Opcode: OpReleaseMem, Mnemonic: "RELEASE_MEM", MinDwords: 3,
			Fields: []Field{
				hexField("event_type", 0, 0, 6),
				enumField("event_index", 0, 8, 4, enumReleaseEventIdx),
				enumField("dst_sel", 1, 16, 2, enumReleaseDstSel),
				enumField("int_sel", 1, 24, 3, enumReleaseIntSel),
				enumField("data_sel", 1, 29, 3, enumReleaseDataSel),
			},
			Tail: "data", TailDword: 2,
		},
		{
			Opcode: OpAcquireMem, Mnemonic: "ACQUIRE_MEM", Generation: gfx.Gen9, MinDwords: 7,
			Fields: []Field{
				hexField("coher_cntl", 0, 0, 31),
				enumField("engine_sel", 0, 31, 1, enumAcquireEng),
				hexDword("coher_size", 1),
				hexField("coher_size_hi", 2, 0, 8),
				reserved(2, 8, 24),
				hexDword("coher_base_lo", 3),
				hexField("coher_base_hi", 4, 0, 24),
				reserved(4, 24, 8),
				field("poll_interval", 5, 0, 16),
				reserved(5, 16, 16),
			},
		},
		{
			Opcode: OpAcquireMem, Mnemonic: "ACQUIRE_MEM", MinDwords: 2,
			Fields: []Field{
				hexField("coher_cntl", 0, 0, 31),
				enumField("engine_sel", 0, 31, 1, enumAcquireEng),
			},
			Tail: "data", TailDword: 1,
		},
		{
			Opcode: OpDmaData, Mnemonic: "DMA_DATA", MinDwords: 7,
			Fields: []Field{
				enumField("engine_sel", 0, 0, 1, enumMicroEngine),
				reserved(0, 1, 12),
				enumField("src_cache_policy", 0, 13, 2, enumCachePolicy),
				reserved(0, 15, 5),
				enumField("dst_sel", 0, 20, 2, enumDmaDstSel),
				reserved(0, 22, 3),
				enumField("dst_cache_policy", 0, 25, 2, enumCachePolicy),
				reserved(0, 27, 2),
				enumField("src_sel", 0, 29, 2, enumDmaSrcSel),
				field("cp_sync", 0, 31, 1),
				hexDword("src_addr_lo_or_data", 1),
				hexDword("src_addr_hi", 2),
				hexDword("dst_addr_lo", 3),
				hexDword("dst_addr_hi", 4),
				field("byte_count", 5, 0, 26),
				enumField("sas", 5, 26, 1, enumAddrSpace),
				enumField("das", 5, 27, 1, enumAddrSpace),
				enumField("saic", 5, 28, 1, enumAddrIncr),
				enumField("daic", 5, 29, 1, enumAddrIncr),
				field("raw_wait", 5, 30, 1),
				field("dis_wc", 5, 31, 1),
			},
		},
		setRegLayout(OpSetConfigReg, "SET_CONFIG_REG", gfx.GenAny),
		setRegLayout(OpSetContextReg, "SET_CONTEXT_REG", gfx.GenAny),
		setRegLayout(OpSetContextRegIndex, "SET_CONTEXT_REG_INDEX", gfx.Gen9),
		setRegLayout(OpSetShReg, "SET_SH_REG", gfx.GenAny),
		setRegLayout(OpSetUConfigReg, "SET_UCONFIG_REG", gfx.GenAny),
		{
			Opcode: OpIndirectBuffer, Mnemonic: "INDIRECT_BUFFER", MinDwords: 4,
			Fields: []Field{
				field("swap", 0, 0, 2),
				hexField("ib_base_lo", 0, 2, 30),
				hexField("ib_base_hi", 1, 0, 16),
				reserved(1, 16, 16),
				field("ib_size", 2, 0, 20),
				field("chain", 2, 20, 1),
				field("offload_polling", 2, 21, 1),
				reserved(2, 22, 1),
				field("valid", 2, 23, 1),
				field("vmid", 2, 24, 4),
				enumField("cache_policy", 2, 28, 2, enumCachePolicy),
				reserved(2, 30, 2),
			},
		},
		dummyLayout(OpIncrementDECounter, "INCREMENT_DE_COUNTER"),
		{
			Opcode: OpWaitOnCECounter, Mnemonic: "WAIT_ON_CE_COUNTER", MinDwords: 2,
			Fields: []Field{
				field("cond_surface_sync", 0, 0, 1),
				field("force_sync", 0, 1, 1),
				reserved(0, 2, 25),
				field("mem_volatile", 0, 27, 1),
				reserved(0, 28, 4),
			},
		},
		dummyLayout(OpSwitchBuffer, "SWITCH_BUFFER"),
		{
			Opcode: OpFrameControl, Mnemonic: "FRAME_CONTROL", MinDwords: 2,
			Fields: []Field{
				enumField("tmz", 0, 0, 1, enumTmz),
				reserved(0, 1, 27),
				enumField("command", 0, 28, 4, enumFrameCommand),
			},
		},
		{
			Opcode: OpPreambleCntl, Mnemonic: "PREAMBLE_CNTL", MinDwords: 2,
			Fields: []Field{
				reserved(0, 0, 28),
				enumField("command", 0, 28, 4, enumPreambleCmd),
			},
		},
	}
}
