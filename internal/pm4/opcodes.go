package pm4

import "fmt"

// Opcode selects a type-3 packet's meaning.
type Opcode uint8

const (
	OpNop                     Opcode = 0x10
	OpSetBase                 Opcode = 0x11
	OpClearState              Opcode = 0x12
	OpIndexBufferSize         Opcode = 0x13
	OpDispatchDirect          Opcode = 0x15
	OpDispatchIndirect        Opcode = 0x16
	OpAtomicGDS               Opcode = 0x1D
	OpAtomicMem               Opcode = 0x1E
	OpOcclusionQuery          Opcode = 0x1F
	OpSetPredication          Opcode = 0x20
	OpRegRMW                  Opcode = 0x21
	OpCondExec                Opcode = 0x22
	OpPredExec                Opcode = 0x23
	OpDrawIndirect            Opcode = 0x24
	OpDrawIndexIndirect       Opcode = 0x25
	OpIndexBase               Opcode = 0x26
	OpDrawIndex2              Opcode = 0x27
	OpContextControl          Opcode = 0x28
	OpIndexType               Opcode = 0x2A
	OpDrawIndirectMulti       Opcode = 0x2C
	OpDrawIndexAuto           Opcode = 0x2D
	OpNumInstances            Opcode = 0x2F
	OpDrawIndexMultiAuto      Opcode = 0x30
	OpIndirectBufferConst     Opcode = 0x33
	OpStrmoutBufferUpdate     Opcode = 0x34
	OpDrawIndexOffset2        Opcode = 0x35
	OpDrawPreamble            Opcode = 0x36
	OpWriteData               Opcode = 0x37
	OpDrawIndexIndirectMulti  Opcode = 0x38
	OpMemSemaphore            Opcode = 0x39
	OpDrawIndexMultiInst      Opcode = 0x3A
	OpCopyDW                  Opcode = 0x3B
	OpWaitRegMem              Opcode = 0x3C
	OpIndirectBuffer          Opcode = 0x3F
	OpCopyData                Opcode = 0x40
	OpPfpSyncMe               Opcode = 0x42
	OpSurfaceSync             Opcode = 0x43
	OpCondWrite               Opcode = 0x45
	OpEventWrite              Opcode = 0x46
	OpEventWriteEOP           Opcode = 0x47
	OpEventWriteEOS           Opcode = 0x48
	OpReleaseMem              Opcode = 0x49
	OpPreambleCntl            Opcode = 0x4A
	OpDmaData                 Opcode = 0x50
	OpContextRegRMW           Opcode = 0x51
	OpAcquireMem              Opcode = 0x58
	OpRewind                  Opcode = 0x59
	OpPrimeUTCL2              Opcode = 0x5D
	OpLoadUConfigReg          Opcode = 0x5E
	OpLoadShReg               Opcode = 0x5F
	OpLoadConfigReg           Opcode = 0x60
	OpLoadContextReg          Opcode = 0x61
	OpLoadShRegIndex          Opcode = 0x63
	OpSetConfigReg            Opcode = 0x68
	OpSetContextReg           Opcode = 0x69
	OpSetContextRegIndex      Opcode = 0x6A
	OpSetShReg                Opcode = 0x76
	OpSetShRegOffset          Opcode = 0x77
	OpSetUConfigReg           Opcode = 0x79
	OpSetUConfigRegIndex      Opcode = 0x7A
	OpLoadConstRAM            Opcode = 0x80
	OpWriteConstRAM           Opcode = 0x81
	OpDumpConstRAM            Opcode = 0x83
	OpIncrementCECounter      Opcode = 0x84
	OpIncrementDECounter      Opcode = 0x85
	OpWaitOnCECounter         Opcode = 0x86
	OpWaitOnDECounterDiff     Opcode = 0x88
	OpSwitchBuffer            Opcode = 0x8B
	OpGetLodStats             Opcode = 0x8E
	OpFrameControl            Opcode = 0x90
	OpWaitRegMem64            Opcode = 0x93
	OpDmaDataFillMulti        Opcode = 0x9A
	OpSetShRegIndex           Opcode = 0x9B
	OpDrawIndirectCountMulti  Opcode = 0x9C
	OpDrawIndexIndirectCountM Opcode = 0x9D
	OpLoadContextRegIndex     Opcode = 0x9F
)

var opcodeNames = map[Opcode]string{
	OpNop:                     "NOP",
	OpSetBase:                 "SET_BASE",
	OpClearState:              "CLEAR_STATE",
	OpIndexBufferSize:         "INDEX_BUFFER_SIZE",
	OpDispatchDirect:          "DISPATCH_DIRECT",
	OpDispatchIndirect:        "DISPATCH_INDIRECT",
	OpAtomicGDS:               "ATOMIC_GDS",
	OpAtomicMem:               "ATOMIC_MEM",
	OpOcclusionQuery:          "OCCLUSION_QUERY",
	OpSetPredication:          "SET_PREDICATION",
	OpRegRMW:                  "REG_RMW",
	OpCondExec:                "COND_EXEC",
	OpPredExec:                "PRED_EXEC",
	OpDrawIndirect:            "DRAW_INDIRECT",
	OpDrawIndexIndirect:       "DRAW_INDEX_INDIRECT",
	OpIndexBase:               "INDEX_BASE",
	OpDrawIndex2:              "DRAW_INDEX_2",
	OpContextControl:          "CONTEXT_CONTROL",
	OpIndexType:               "INDEX_TYPE",
	OpDrawIndirectMulti:       "DRAW_INDIRECT_MULTI",
	OpDrawIndexAuto:           "DRAW_INDEX_AUTO",
	OpNumInstances:            "NUM_INSTANCES",
	OpDrawIndexMultiAuto:      "DRAW_INDEX_MULTI_AUTO",
	OpIndirectBufferConst:     "INDIRECT_BUFFER_CONST",
	OpStrmoutBufferUpdate:     "STRMOUT_BUFFER_UPDATE",
	OpDrawIndexOffset2:        "DRAW_INDEX_OFFSET_2",
	OpDrawPreamble:            "DRAW_PREAMBLE",
	OpWriteData:               "WRITE_DATA",
	OpDrawIndexIndirectMulti:  "DRAW_INDEX_INDIRECT_MULTI",
	OpMemSemaphore:            "MEM_SEMAPHORE",
	OpDrawIndexMultiInst:      "DRAW_INDEX_MULTI_INST",
	OpCopyDW:                  "COPY_DW",
	OpWaitRegMem:              "WAIT_REG_MEM",
	OpIndirectBuffer:          "INDIRECT_BUFFER",
	OpCopyData:                "COPY_DATA",
	OpPfpSyncMe:               "PFP_SYNC_ME",
	OpSurfaceSync:             "SURFACE_SYNC",
	OpCondWrite:               "COND_WRITE",
	OpEventWrite:              "EVENT_WRITE",
	OpEventWriteEOP:           "EVENT_WRITE_EOP",
	OpEventWriteEOS:           "EVENT_WRITE_EOS",
	OpReleaseMem:              "RELEASE_MEM",
	OpPreambleCntl:            "PREAMBLE_CNTL",
	OpDmaData:                 "DMA_DATA",
	OpContextRegRMW:           "CONTEXT_REG_RMW",
	OpAcquireMem:              "ACQUIRE_MEM",
	OpRewind:                  "REWIND",
	OpPrimeUTCL2:              "PRIME_UTCL2",
	OpLoadUConfigReg:          "LOAD_UCONFIG_REG",
	OpLoadShReg:               "LOAD_SH_REG",
	OpLoadConfigReg:           "LOAD_CONFIG_REG",
	OpLoadContextReg:          "LOAD_CONTEXT_REG",
	OpLoadShRegIndex:          "LOAD_SH_REG_INDEX",
	OpSetConfigReg:            "SET_CONFIG_REG",
	OpSetContextReg:           "SET_CONTEXT_REG",
	OpSetContextRegIndex:      "SET_CONTEXT_REG_INDEX",
	OpSetShReg:                "SET_SH_REG",
	OpSetShRegOffset:          "SET_SH_REG_OFFSET",
	OpSetUConfigReg:           "SET_UCONFIG_REG",
	OpSetUConfigRegIndex:      "SET_UCONFIG_REG_INDEX",
	OpLoadConstRAM:            "LOAD_CONST_RAM",
	OpWriteConstRAM:           "WRITE_CONST_RAM",
	OpDumpConstRAM:            "DUMP_CONST_RAM",
	OpIncrementCECounter:      "INCREMENT_CE_COUNTER",
	OpIncrementDECounter:      "INCREMENT_DE_COUNTER",
	OpWaitOnCECounter:         "WAIT_ON_CE_COUNTER",
	OpWaitOnDECounterDiff:     "WAIT_ON_DE_COUNTER_DIFF",
	OpSwitchBuffer:            "SWITCH_BUFFER",
	OpGetLodStats:             "GET_LOD_STATS",
	OpFrameControl:            "FRAME_CONTROL",
	OpWaitRegMem64:            "WAIT_REG_MEM64",
	OpDmaDataFillMulti:        "DMA_DATA_FILL_MULTI",
	OpSetShRegIndex:           "SET_SH_REG_INDEX",
	OpDrawIndirectCountMulti:  "DRAW_INDIRECT_COUNT_MULTI",
	OpDrawIndexIndirectCountM: "DRAW_INDEX_INDIRECT_COUNT_MULTI",
	OpLoadContextRegIndex:     "LOAD_CONTEXT_REG_INDEX",
}

// Known reports whether op has a mnemonic, independent of any layout.
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN_0x%02X", uint8(op))
}
